package consts

const (
	UserFollowerCountKey  = "user:follower:count:"
	UserFollowingCountKey = "user:following:count:"
	ReviewLikeCountKey    = "review:like:count:"
	RecipeReviewCountKey  = "recipe:review:count:"
)

const (
	AggregateReconcileLock = "lock:aggregate:reconcile"
)
