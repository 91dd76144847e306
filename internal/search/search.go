package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/malexstudio/site_api/internal/models"
)

// WorksIndex is the Elasticsearch index holding portfolio works.
const WorksIndex = "works"

// IndexWork puts one work document into the index, keyed by its row id.
func IndexWork(ctx context.Context, es *elasticsearch.Client, work *models.Work) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(work); err != nil {
		return fmt.Errorf("index work: %w", err)
	}
	res, err := es.Index(
		WorksIndex,
		&buf,
		es.Index.WithContext(ctx),
		es.Index.WithDocumentID(strconv.FormatUint(uint64(work.ID), 10)),
	)
	if err != nil {
		return fmt.Errorf("index work: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index work: %s", res.Status())
	}
	return nil
}

// DeleteWork removes work documents from the index. Missing documents are
// not an error.
func DeleteWork(ctx context.Context, es *elasticsearch.Client, ids ...uint) error {
	for _, id := range ids {
		res, err := es.Delete(
			WorksIndex,
			strconv.FormatUint(uint64(id), 10),
			es.Delete.WithContext(ctx),
		)
		if err != nil {
			return fmt.Errorf("delete work from index: %w", err)
		}
		res.Body.Close()
	}
	return nil
}

// SearchWorks runs a fuzzy full-text search over title, category and
// comment.
func SearchWorks(ctx context.Context, es *elasticsearch.Client, query string, from, size int) (int64, []models.Work, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"title^2", "category^2", "comment"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("search works: %w", err)
	}

	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(WorksIndex),
		es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search works: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search works: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Work `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("search works: decode: %w", err)
	}

	works := make([]models.Work, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		works[i] = hit.Source
	}
	return r.Hits.Total.Value, works, nil
}
