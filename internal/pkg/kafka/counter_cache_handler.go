package kafka

import (
	"Larder/internal/pkg/consts"
	"context"
	"errors"
	log "log/slog"
	"strconv"

	"github.com/IBM/sarama"
)

// CacheEvicter 计数缓存的删除接口
type CacheEvicter interface {
	Evict(ctx context.Context, keys ...string)
}

// CounterCacheHandler 消费 canal binlog，删除受影响的计数缓存
// 服务内部提交后已经删过一次，这里兜底处理其他实例或人工修改数据库的情况
type CounterCacheHandler struct {
	cache CacheEvicter
}

func NewCounterCacheHandler(cache CacheEvicter) *CounterCacheHandler {
	return &CounterCacheHandler{cache: cache}
}

func (s *CounterCacheHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("counter cache consumer setup")
	return nil
}

func (s *CounterCacheHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("counter cache consumer cleanup")
	return nil
}

func (s *CounterCacheHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("counter cache consume claim", "topic", claim.Topic(), "partition", claim.Partition())
	if err := pullMessageBatch(session, claim, s.logic); err != nil {
		log.Error("counter cache process batch error", "err", err)
		return err
	}
	return nil
}

func (s *CounterCacheHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	canalMsg, err := ToCanalMessage(msg,
		consts.TableUserFollows, consts.TableReviewLikes, consts.TableReviews, consts.TableRecipes, consts.TableUsers)
	if err != nil {
		if errors.Is(err, ErrTableNotWatched) || errors.Is(err, ErrEmptyData) {
			return nil
		}
		// 格式错误的消息重试也无法恢复
		log.WarnContext(ctx, "skip malformed canal message", "offset", msg.Offset, "err", err)
		return nil
	}

	keys := affectedKeys(canalMsg)
	if len(keys) == 0 {
		return nil
	}
	s.cache.Evict(ctx, keys...)
	log.InfoContext(ctx, "counter cache evicted", "table", canalMsg.Table, "type", canalMsg.Type, "keys", len(keys))
	return nil
}

// affectedKeys 根据表和行数据推导需要删除的缓存键
func affectedKeys(msg *CanalMessage) []string {
	var keys []string
	seen := make(map[string]struct{})
	add := func(prefix string, id uint64) {
		if id == 0 {
			return
		}
		key := prefix + strconv.FormatUint(id, 10)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}

	for _, row := range msg.Data {
		switch msg.Table {
		case consts.TableUserFollows:
			add(consts.UserFollowerCountKey, StrToUint64(row["following_id"]))
			add(consts.UserFollowingCountKey, StrToUint64(row["follower_id"]))
		case consts.TableUsers:
			id := StrToUint64(row["id"])
			add(consts.UserFollowerCountKey, id)
			add(consts.UserFollowingCountKey, id)
		case consts.TableReviewLikes:
			add(consts.ReviewLikeCountKey, StrToUint64(row["review_id"]))
		case consts.TableReviews:
			add(consts.ReviewLikeCountKey, StrToUint64(row["id"]))
			add(consts.RecipeReviewCountKey, StrToUint64(row["recipe_id"]))
		case consts.TableRecipes:
			add(consts.RecipeReviewCountKey, StrToUint64(row["id"]))
		}
	}
	return keys
}
