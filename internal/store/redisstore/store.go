// Package redisstore keeps each WorkItem in a Redis hash. Hash semantics map
// directly onto the merge-update contract: HSET touches only the fields a
// patch mentions and HDEL clears the ones marked for deletion.
package redisstore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/joseph-ayodele/transcript-quizgen/constants"
	"github.com/joseph-ayodele/transcript-quizgen/internal/common"
	"github.com/joseph-ayodele/transcript-quizgen/internal/entity"
)

const indexKey = "workitems"

type Store struct {
	client *redis.Client
}

func New(client *redis.Client) *Store {
	return &Store{client: client}
}

func itemKey(id string) string {
	return "workitem:" + id
}

func (s *Store) Get(ctx context.Context, id string) (*entity.WorkItem, error) {
	fields, err := s.client.HGetAll(ctx, itemKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: hgetall %s: %v", common.ErrStoreUnavailable, id, err)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return fromHash(id, fields), nil
}

func (s *Store) MergeSet(ctx context.Context, id string, patch entity.WorkItemPatch) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	key := itemKey(id)

	sets := map[string]string{"updated_at": now}
	var dels []string
	setStr := func(field string, p *string) {
		if p == nil {
			return
		}
		if entity.Cleared(p) {
			dels = append(dels, field)
			return
		}
		sets[field] = *p
	}
	if patch.Status != nil {
		sets["status"] = string(*patch.Status)
	}
	setStr("title", patch.Title)
	setStr("source_version_marker", patch.SourceVersionMarker)
	setStr("form_id", patch.FormID)
	setStr("form_url", patch.FormURL)
	setStr("summary", patch.Summary)
	setStr("error_message", patch.ErrorMessage)
	if patch.QuestionCount != nil {
		sets["question_count"] = strconv.Itoa(*patch.QuestionCount)
	}
	if patch.Progress != nil {
		sets["progress_step"] = string(patch.Progress.Step)
		sets["progress_message"] = patch.Progress.Message
		sets["progress_percent"] = strconv.Itoa(patch.Progress.Percent)
	}

	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, indexKey, id)
	pipe.HSetNX(ctx, key, "created_at", now)
	pipe.HSet(ctx, key, sets)
	if len(dels) > 0 {
		pipe.HDel(ctx, key, dels...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: merge %s: %v", common.ErrStoreUnavailable, id, err)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]*entity.WorkItem, error) {
	ids, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: list ids: %v", common.ErrStoreUnavailable, err)
	}
	out := make([]*entity.WorkItem, 0, len(ids))
	for _, id := range ids {
		item, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if item != nil {
			out = append(out, item)
		}
	}
	return out, nil
}

func fromHash(id string, fields map[string]string) *entity.WorkItem {
	item := &entity.WorkItem{
		ID:                  id,
		Status:              constants.WorkStatus(fields["status"]),
		Title:               fields["title"],
		SourceVersionMarker: fields["source_version_marker"],
		FormID:              fields["form_id"],
		FormURL:             fields["form_url"],
		Summary:             fields["summary"],
		ErrorMessage:        fields["error_message"],
		Progress: entity.Progress{
			Step:    constants.ProgressStep(fields["progress_step"]),
			Message: fields["progress_message"],
		},
	}
	if n, err := strconv.Atoi(fields["question_count"]); err == nil {
		item.QuestionCount = n
	}
	if n, err := strconv.Atoi(fields["progress_percent"]); err == nil {
		item.Progress.Percent = n
	}
	if t, err := time.Parse(time.RFC3339Nano, fields["created_at"]); err == nil {
		item.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, fields["updated_at"]); err == nil {
		item.UpdatedAt = t
	}
	return item
}
