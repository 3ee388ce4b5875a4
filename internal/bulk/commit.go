package bulk

import (
	"log/slog"
	"time"

	"github.com/kaigo-records/care-records/backend/internal/domain"
)

type Tally struct {
	Succeeded int `json:"succeeded"`
	Skipped   int `json:"skipped"`
}

// RecordWriter 在一个事务中写入同一入住者的全部记录，由 repository.Repository 实现
type RecordWriter interface {
	CreateCategoryRecords(records []domain.Record) error
}

// Committer 把一批草稿写入记录存储并返回成功和跳过的人数
type Committer interface {
	Commit(residentIDs []int64, drafts map[int64]Draft, category domain.Category, recordedAt time.Time, staffID int64) Tally
}

// SequentialCommitter 按顺序逐个入住者提交，某个入住者失败时记为跳过并继续处理下一个
// 已经提交成功的入住者不会因为后面的失败而回滚
type SequentialCommitter struct {
	writer RecordWriter
}

func NewSequentialCommitter(writer RecordWriter) *SequentialCommitter {
	return &SequentialCommitter{writer: writer}
}

func (c *SequentialCommitter) Commit(residentIDs []int64, drafts map[int64]Draft, category domain.Category, recordedAt time.Time, staffID int64) Tally {
	var tally Tally

	for _, residentID := range residentIDs {
		d, ok := drafts[residentID]
		if !ok || d.IsEmpty() {
			tally.Skipped++
			continue
		}

		if d.Category() != category {
			slog.Error("草稿类别不一致", "residentID", residentID, "category", category, "draftCategory", d.Category())
			tally.Skipped++
			continue
		}

		records, err := d.Records(residentID, staffID, recordedAt)
		if err != nil {
			slog.Error("无法解析草稿", "residentID", residentID, "category", category, "error", err)
			tally.Skipped++
			continue
		}
		if len(records) == 0 {
			tally.Skipped++
			continue
		}

		if err := c.writer.CreateCategoryRecords(records); err != nil {
			slog.Error("无法保存记录", "residentID", residentID, "category", category, "error", err)
			tally.Skipped++
			continue
		}

		tally.Succeeded++
	}

	return tally
}
