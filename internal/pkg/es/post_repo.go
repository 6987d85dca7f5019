package es

import (
	"DevNest/internal/model"
	"context"
	"errors"
	"strconv"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/versiontype"
	"github.com/goccy/go-json"
)

// MaxSearchDepth 与索引默认的 max_result_window 一致
const MaxSearchDepth = 10000

type PostRepo interface {
	// SearchPostIDs 按相关度返回命中的帖子 ID 与命中总数
	SearchPostIDs(ctx context.Context, keyword string, from, size int) ([]uint64, int64, error)
	IndexPost(ctx context.Context, post *model.Post) error
	RemovePost(ctx context.Context, id uint64) error
}

type PostRepoImpl struct {
	client *elasticsearch.TypedClient
	index  string
}

func NewPostRepo(client *elasticsearch.TypedClient, index string) PostRepo {
	return &PostRepoImpl{client: client, index: index}
}

func (s *PostRepoImpl) SearchPostIDs(ctx context.Context, keyword string, from, size int) ([]uint64, int64, error) {
	if from+size > MaxSearchDepth {
		size = max(MaxSearchDepth-from, 0)
	}
	if size == 0 {
		from = 0
	}

	resp, err := s.client.Search().
		Index(s.index).
		Query(&types.Query{
			MultiMatch: &types.MultiMatchQuery{
				Query:  keyword,
				Fields: []string{"title^2", "summary", "tags"},
			},
		}).
		From(from).
		Size(size).
		Do(ctx)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if resp.Hits.Total != nil {
		total = resp.Hits.Total.Value
	}
	ids := make([]uint64, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		if hit.Source_ == nil {
			continue
		}
		var doc PostDocument
		if err = json.Unmarshal(hit.Source_, &doc); err != nil {
			continue
		}
		ids = append(ids, doc.ID)
	}
	return ids, total, nil
}

// IndexPost 以 UpdatedAt 作为外部版本号，乱序到达的旧版本被忽略
func (s *PostRepoImpl) IndexPost(ctx context.Context, post *model.Post) error {
	_, err := s.client.Index(s.index).
		Id(strconv.FormatUint(post.ID, 10)).
		Document(NewPostDocument(post)).
		Version(strconv.FormatInt(post.UpdatedAt.UnixNano(), 10)).
		VersionType(versiontype.External).
		Do(ctx)
	if err != nil {
		var e *types.ElasticsearchError
		if errors.As(err, &e) && e.Status == ConflictCode {
			return nil
		}
		return err
	}
	return nil
}

func (s *PostRepoImpl) RemovePost(ctx context.Context, id uint64) error {
	_, err := s.client.Delete(s.index, strconv.FormatUint(id, 10)).Do(ctx)
	if err != nil {
		var e *types.ElasticsearchError
		if errors.As(err, &e) && e.Status == NotFoundCode {
			return nil
		}
		return err
	}
	return nil
}
