package consts

const (
	ReconcileBatchSize = 200
	ComplexRecipeLimit = 3
)

// canal 表名
const (
	TableUserFollows = "user_follows"
	TableReviewLikes = "review_likes"
	TableReviews     = "reviews"
	TableRecipes     = "recipes"
	TableUsers       = "users"
)
