// Package directory wraps the Local Business Data API as the pipeline's
// search and detail sources.
package directory

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/localatlas/bizscout/internal/category"
	"github.com/localatlas/bizscout/internal/model"
	"github.com/localatlas/bizscout/internal/phone"
	"github.com/localatlas/bizscout/internal/ratelimit"
	"github.com/localatlas/bizscout/pkg/localbiz"
)

// ErrNotFound means the directory had no acceptable match for the query.
var ErrNotFound = eris.New("directory: no matching business")

// Result carries the fields one directory lookup produced.
type Result struct {
	ID           string
	Phone        model.Field
	Email        model.Field
	OpeningHours model.Field
	Website      model.Field
}

// Client performs validated directory lookups.
type Client struct {
	api     localbiz.Client
	limiter *ratelimit.Registry
	phones  *phone.Normalizer
	table   *category.Table
}

// NewClient creates a directory Client.
func NewClient(api localbiz.Client, limiter *ratelimit.Registry, phones *phone.Normalizer, table *category.Table) *Client {
	return &Client{
		api:     api,
		limiter: limiter,
		phones:  phones,
		table:   table,
	}
}

// Search looks up one named business. The category is omitted from the
// query when blank. Returns ErrNotFound when the directory has no match or
// the match fails validation, and localbiz.ErrQuotaExceeded untouched so
// the caller can stop using this source for the rest of the run.
func (c *Client) Search(ctx context.Context, name, cat, city string) (*Result, error) {
	if err := c.limiter.Acquire(ctx, ratelimit.SourceDirectorySearch); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("%s %s %s", name, cat, city)
	if cat == "" {
		query = fmt.Sprintf("%s %s", name, city)
	}

	biz, err := c.api.Search(ctx, query)
	if err != nil {
		if eris.Is(err, localbiz.ErrQuotaExceeded) {
			return nil, err
		}
		zap.L().Warn("directory: search failed",
			zap.String("name", name),
			zap.String("city", city),
			zap.Error(err),
		)
		return nil, ErrNotFound
	}
	if biz == nil {
		return nil, ErrNotFound
	}

	if !c.validate(biz, cat, city) {
		return nil, ErrNotFound
	}

	return c.result(biz), nil
}

// Details fetches full fields by business id. An empty id or a failed
// lookup yields an all-unknown result rather than an error; quota
// exhaustion is still surfaced.
func (c *Client) Details(ctx context.Context, id string) (*Result, error) {
	if id == "" {
		return &Result{}, nil
	}

	if err := c.limiter.Acquire(ctx, ratelimit.SourceDirectoryDetail); err != nil {
		return nil, err
	}

	biz, err := c.api.Details(ctx, id)
	if err != nil {
		if eris.Is(err, localbiz.ErrQuotaExceeded) {
			return nil, err
		}
		zap.L().Warn("directory: details failed", zap.String("business_id", id), zap.Error(err))
		return &Result{}, nil
	}
	if biz == nil {
		return &Result{}, nil
	}

	res := c.result(biz)
	res.ID = id
	return res, nil
}

// validate rejects candidates that do not look like the queried entity:
// the address must name the city, and categories with a keyword check need
// the keyword in the business name or address.
func (c *Client) validate(biz *localbiz.Business, cat, city string) bool {
	name := strings.ToLower(biz.Name)
	address := strings.ToLower(biz.Address)

	if kw, ok := c.table.Keyword(cat); ok {
		if !strings.Contains(name, kw) && !strings.Contains(address, kw) {
			zap.L().Debug("directory: keyword check rejected match",
				zap.String("name", biz.Name),
				zap.String("keyword", kw),
			)
			return false
		}
	}

	if !strings.Contains(address, strings.ToLower(city)) {
		zap.L().Debug("directory: match is not in queried city",
			zap.String("name", biz.Name),
			zap.String("address", biz.Address),
			zap.String("city", city),
		)
		return false
	}

	return true
}

func (c *Client) result(biz *localbiz.Business) *Result {
	return &Result{
		ID:           biz.BusinessID,
		Phone:        c.phones.Normalize(model.FieldOf(biz.PhoneNumber)),
		Email:        model.FieldOf(biz.Email),
		OpeningHours: model.FieldOf(biz.Hours.Flatten()),
		Website:      model.FieldOf(biz.Website),
	}
}
