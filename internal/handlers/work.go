package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"gorm.io/gorm"

	"github.com/malexstudio/site_api/internal/events"
	"github.com/malexstudio/site_api/internal/graphql"
	"github.com/malexstudio/site_api/internal/logging"
	"github.com/malexstudio/site_api/internal/models"
	"github.com/malexstudio/site_api/internal/search"
)

// WorkResolver serves the portfolio model. Admin queries see full rows;
// the public getWorks/newWorks projections expose only image, category and
// timestamp. Created and updated works are mirrored into the search index.
type WorkResolver struct {
	DB       *gorm.DB
	ES       *elasticsearch.Client
	Producer *events.Producer
	Limit    int
}

type workPublic struct {
	ImgURL    string    `json:"img_url"`
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
}

func publicProjection(works []models.Work) []any {
	data := make([]any, len(works))
	for i, w := range works {
		data[i] = workPublic{ImgURL: w.ImgURL, Category: w.Category, Timestamp: w.Timestamp}
	}
	return data
}

func (r *WorkResolver) Work(ctx context.Context, args map[string]any) *graphql.Response {
	id, ok := argID(args, "id")
	if !ok {
		return graphql.BadRequest("")
	}
	var work models.Work
	if err := r.DB.WithContext(ctx).First(&work, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return graphql.OK()
		}
		return failure(ctx, err)
	}
	return graphql.OK(work)
}

func (r *WorkResolver) Works(ctx context.Context, args map[string]any) *graphql.Response {
	q := r.DB.WithContext(ctx).Model(&models.Work{})

	ids, hasIDs := argIDs(args, "ids")
	page, hasPagination := argPagination(args, "pagination")

	switch {
	case hasIDs:
		q = q.Where("id IN ?", ids)
	case hasPagination:
		if page.PerPage > r.Limit {
			return graphql.BadRequest(fmt.Sprintf("Pagination is limited to %d objects per request!", r.Limit))
		}
		q = q.Offset(page.PerPage * (page.Page - 1)).Limit(page.PerPage)
	default:
		return graphql.BadRequest("You must specify array of necessary ids or filter with pagination!")
	}

	if sort, ok := argMap(args, "sort"); ok {
		if field, ok := argString(sort, "field"); ok {
			order, _ := argString(sort, "order")
			if order != "desc" {
				order = "asc"
			}
			q = q.Order(fmt.Sprintf("%s %s", field, order))
		}
	}

	var works []models.Work
	if err := q.Find(&works).Error; err != nil {
		return failure(ctx, err)
	}
	data := make([]any, len(works))
	for i, w := range works {
		data[i] = w
	}
	return graphql.OK(data...)
}

// GetWorks is the public portfolio listing: pagination required, fields
// reduced to the public projection.
func (r *WorkResolver) GetWorks(ctx context.Context, args map[string]any) *graphql.Response {
	page, ok := argPagination(args, "pagination")
	if !ok {
		return graphql.BadRequest("Pagination param was not specified!")
	}
	if page.PerPage > r.Limit {
		return graphql.BadRequest(fmt.Sprintf("Pagination is limited to %d objects per request!", r.Limit))
	}

	var works []models.Work
	err := r.DB.WithContext(ctx).
		Order("timestamp desc").
		Offset(page.PerPage * (page.Page - 1)).
		Limit(page.PerPage).
		Find(&works).Error
	if err != nil {
		return failure(ctx, err)
	}
	return graphql.OK(publicProjection(works)...)
}

// NewWorks returns the num most recent works in the public projection.
func (r *WorkResolver) NewWorks(ctx context.Context, args map[string]any) *graphql.Response {
	num, ok := argInt(args, "num")
	if !ok || num < 1 {
		return graphql.BadRequest("")
	}
	if num > r.Limit {
		return graphql.BadRequest(fmt.Sprintf("Pagination is limited to %d objects per request!", r.Limit))
	}

	var works []models.Work
	if err := r.DB.WithContext(ctx).Order("timestamp desc").Limit(num).Find(&works).Error; err != nil {
		return failure(ctx, err)
	}
	return graphql.OK(publicProjection(works)...)
}

// SearchWorks runs a full-text query over the search index.
func (r *WorkResolver) SearchWorks(ctx context.Context, args map[string]any) *graphql.Response {
	query, ok := argString(args, "query")
	if !ok || query == "" {
		return graphql.BadRequest("")
	}
	page, hasPagination := argPagination(args, "pagination")
	if !hasPagination {
		page = pagination{Page: 1, PerPage: r.Limit}
	}
	if page.PerPage > r.Limit {
		return graphql.BadRequest(fmt.Sprintf("Pagination is limited to %d objects per request!", r.Limit))
	}

	_, works, err := search.SearchWorks(ctx, r.ES, query, page.PerPage*(page.Page-1), page.PerPage)
	if err != nil {
		return failure(ctx, err)
	}
	data := make([]any, len(works))
	for i, w := range works {
		data[i] = w
	}
	return graphql.OK(data...)
}

func (r *WorkResolver) CreateWork(ctx context.Context, args map[string]any) *graphql.Response {
	l := logging.FromContext(ctx).With("resolver", "createWork")

	input, ok := argMap(args, "input")
	if !ok {
		return graphql.BadRequest("")
	}
	imgURL, ok := argString(input, "img_url")
	if !ok || imgURL == "" {
		return graphql.BadRequest("")
	}
	category, ok := argString(input, "category")
	if !ok || category == "" {
		return graphql.BadRequest("")
	}
	title, _ := argString(input, "title")
	comment, _ := argString(input, "comment")

	work := models.Work{
		ImgURL:   imgURL,
		Category: category,
		Title:    title,
		Comment:  comment,
	}
	if err := r.DB.WithContext(ctx).Create(&work).Error; err != nil {
		return failure(ctx, err)
	}
	r.index(ctx, &work)

	publish(ctx, r.Producer, "work_events", fmt.Sprint(work.ID), map[string]any{
		"type":     "work_created",
		"id":       work.ID,
		"category": work.Category,
	})
	l.Info("work_created", "status", 200, "id", work.ID)
	return graphql.OK(work)
}

func (r *WorkResolver) UpdateWork(ctx context.Context, args map[string]any) *graphql.Response {
	id, ok := argID(args, "id")
	if !ok {
		return graphql.BadRequest("")
	}
	input, ok := argMap(args, "input")
	if !ok {
		return graphql.BadRequest("")
	}
	updates := workUpdates(input)
	if len(updates) == 0 {
		return graphql.BadRequest("")
	}

	if err := r.DB.WithContext(ctx).Model(&models.Work{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return failure(ctx, err)
	}
	var work models.Work
	if err := r.DB.WithContext(ctx).First(&work, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return graphql.OK()
		}
		return failure(ctx, err)
	}
	r.index(ctx, &work)
	return graphql.OK(work)
}

func (r *WorkResolver) UpdateManyWorks(ctx context.Context, args map[string]any) *graphql.Response {
	ids, ok := argIDs(args, "ids")
	if !ok || len(ids) == 0 {
		return graphql.BadRequest("")
	}
	input, ok := argMap(args, "input")
	if !ok {
		return graphql.BadRequest("")
	}
	updates := workUpdates(input)
	if len(updates) == 0 {
		return graphql.BadRequest("")
	}

	if err := r.DB.WithContext(ctx).Model(&models.Work{}).Where("id IN ?", ids).Updates(updates).Error; err != nil {
		return failure(ctx, err)
	}
	var works []models.Work
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&works).Error; err != nil {
		return failure(ctx, err)
	}
	data := make([]any, len(works))
	for i := range works {
		r.index(ctx, &works[i])
		data[i] = works[i]
	}
	return graphql.OK(data...)
}

func (r *WorkResolver) DeleteWork(ctx context.Context, args map[string]any) *graphql.Response {
	id, ok := argID(args, "id")
	if !ok {
		return graphql.BadRequest("")
	}
	if err := r.DB.WithContext(ctx).Delete(&models.Work{}, id).Error; err != nil {
		return failure(ctx, err)
	}
	r.unindex(ctx, id)
	return graphql.OK()
}

func (r *WorkResolver) DeleteManyWorks(ctx context.Context, args map[string]any) *graphql.Response {
	ids, ok := argIDs(args, "ids")
	if !ok || len(ids) == 0 {
		return graphql.BadRequest("")
	}
	if err := r.DB.WithContext(ctx).Delete(&models.Work{}, ids).Error; err != nil {
		return failure(ctx, err)
	}
	r.unindex(ctx, ids...)
	return graphql.OK()
}

func workUpdates(input map[string]any) map[string]any {
	updates := map[string]any{}
	if imgURL, ok := argString(input, "img_url"); ok {
		updates["img_url"] = imgURL
	}
	if category, ok := argString(input, "category"); ok {
		updates["category"] = category
	}
	if title, ok := argString(input, "title"); ok {
		updates["title"] = title
	}
	if comment, ok := argString(input, "comment"); ok {
		updates["comment"] = comment
	}
	return updates
}

// index mirrors a work into the search index; indexing trouble is logged,
// never surfaced.
func (r *WorkResolver) index(ctx context.Context, work *models.Work) {
	if r.ES == nil {
		return
	}
	if err := search.IndexWork(ctx, r.ES, work); err != nil {
		logging.FromContext(ctx).Error("work_index_failed", "id", work.ID, "error", err)
	}
}

func (r *WorkResolver) unindex(ctx context.Context, ids ...uint) {
	if r.ES == nil {
		return
	}
	if err := search.DeleteWork(ctx, r.ES, ids...); err != nil {
		logging.FromContext(ctx).Error("work_unindex_failed", "error", err)
	}
}
