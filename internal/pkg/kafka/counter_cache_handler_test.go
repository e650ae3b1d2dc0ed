package kafka

import (
	"context"
	"sync"
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingEvicter struct {
	mu   sync.Mutex
	keys []string
}

func (r *recordingEvicter) Evict(_ context.Context, keys ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, keys...)
}

func message(value string) *sarama.ConsumerMessage {
	return &sarama.ConsumerMessage{Topic: "larder_canal", Value: []byte(value)}
}

func TestToCanalMessage(t *testing.T) {
	msg, err := ToCanalMessage(message(`{"table":"review_likes","type":"INSERT","data":[{"review_id":"7","user_id":"3"}]}`), "review_likes")
	require.NoError(t, err)
	assert.Equal(t, INSERT, msg.Type)
	assert.Equal(t, uint64(7), StrToUint64(msg.Data[0]["review_id"]))

	_, err = ToCanalMessage(message(`{"table":"posts","type":"INSERT","data":[{"id":"1"}]}`), "review_likes")
	assert.ErrorIs(t, err, ErrTableNotWatched)

	_, err = ToCanalMessage(message(`{"table":"review_likes","type":"DELETE","data":[]}`), "review_likes")
	assert.ErrorIs(t, err, ErrEmptyData)

	_, err = ToCanalMessage(message(`not json`), "review_likes")
	assert.Error(t, err)
}

func TestStrToUint64(t *testing.T) {
	assert.Equal(t, uint64(42), StrToUint64("42"))
	assert.Equal(t, uint64(9), StrToUint64(float64(9)))
	assert.Zero(t, StrToUint64("abc"))
	assert.Zero(t, StrToUint64(nil))
	assert.Zero(t, StrToUint64(float64(-1)))
}

func TestAffectedKeys(t *testing.T) {
	cases := []struct {
		name string
		msg  CanalMessage
		want []string
	}{
		{
			name: "follow edge touches both users",
			msg: CanalMessage{Table: "user_follows", Type: INSERT, Data: []map[string]interface{}{
				{"follower_id": "1", "following_id": "2"},
			}},
			want: []string{"user:follower:count:2", "user:following:count:1"},
		},
		{
			name: "user row",
			msg: CanalMessage{Table: "users", Type: UPDATE, Data: []map[string]interface{}{
				{"id": "5"},
			}},
			want: []string{"user:follower:count:5", "user:following:count:5"},
		},
		{
			name: "likes on one review are deduplicated",
			msg: CanalMessage{Table: "review_likes", Type: DELETE, Data: []map[string]interface{}{
				{"review_id": "9", "user_id": "1"},
				{"review_id": "9", "user_id": "2"},
			}},
			want: []string{"review:like:count:9"},
		},
		{
			name: "review row touches review and recipe",
			msg: CanalMessage{Table: "reviews", Type: UPDATE, Data: []map[string]interface{}{
				{"id": "4", "recipe_id": "8"},
			}},
			want: []string{"review:like:count:4", "recipe:review:count:8"},
		},
		{
			name: "unparseable ids are skipped",
			msg: CanalMessage{Table: "recipes", Type: DELETE, Data: []map[string]interface{}{
				{"id": "x"},
			}},
			want: nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, affectedKeys(&tc.msg))
		})
	}
}

func TestCounterCacheHandlerLogic(t *testing.T) {
	evicter := &recordingEvicter{}
	h := NewCounterCacheHandler(evicter)

	err := h.logic(context.Background(), message(`{"table":"user_follows","type":"DELETE","data":[{"follower_id":"3","following_id":"4"}]}`))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"user:follower:count:4", "user:following:count:3"}, evicter.keys)

	// 非监听表和坏消息都直接确认
	require.NoError(t, h.logic(context.Background(), message(`{"table":"posts","type":"INSERT","data":[{"id":"1"}]}`)))
	require.NoError(t, h.logic(context.Background(), message(`{`)))
	assert.Len(t, evicter.keys, 2)
}
