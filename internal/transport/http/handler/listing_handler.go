package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lzscott112ncdm-cmyk/domain-sales-backend/internal/domain"
	"github.com/lzscott112ncdm-cmyk/domain-sales-backend/internal/service"
	"github.com/lzscott112ncdm-cmyk/domain-sales-backend/internal/transport/http/ez"
)

// Listings serves the public catalogue and the admin mutations.
type Listings struct {
	svc *service.ListingService
	log *zap.Logger
}

func NewListings(svc *service.ListingService, l *zap.Logger) *Listings {
	if l == nil {
		l = zap.NewNop()
	}
	return &Listings{svc: svc, log: l.Named("listings")}
}

// DeactivateResult is the soft-delete response body.
type DeactivateResult struct {
	Message string          `json:"message"`
	Domain  *domain.Listing `json:"domain"`
}

type updateIn struct {
	ID      uint64
	Payload service.UpdatePayload
}

// opErrors holds the client messages of one operation.
type opErrors struct {
	failed    string
	duplicate string
}

var (
	errsList       = opErrors{failed: "Failed to fetch domains"}
	errsGet        = opErrors{failed: "Failed to fetch domain"}
	errsCreate     = opErrors{failed: "Failed to create domain", duplicate: "Domain already exists"}
	errsUpdate     = opErrors{failed: "Failed to update domain", duplicate: "Domain name already exists"}
	errsDeactivate = opErrors{failed: "Failed to deactivate domain"}
)

// mapErr turns service errors into client-facing errors. A store or rate
// call that ran past the request deadline is a 504 whatever the driver
// reports.
func (o opErrors) mapErr(ctx context.Context, err error) error {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		return ez.Invalid(ve.Details)
	case errors.Is(err, service.ErrInvalidID):
		return ez.BadRequest("Invalid domain ID")
	case errors.Is(err, domain.ErrListingNotFound):
		return ez.NotFound("Domain not found")
	case errors.Is(err, domain.ErrDuplicateListing) && o.duplicate != "":
		return ez.BadRequest(o.duplicate)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return ez.Timeout(err)
	}
	var ae *ez.AErr
	if errors.As(err, &ae) {
		return err
	}
	return ez.Internal(o.failed, err)
}

func (h *Listings) MountAPI(g *gin.RouterGroup) {
	ez.Register(g, h.log, ez.Action[struct{}, []domain.Listing]{
		Method: http.MethodGet,
		Path:   "/domains",
		Handler: func(c *gin.Context, _ struct{}) ([]domain.Listing, error) {
			ls, err := h.svc.ListActive(c.Request.Context())
			if err != nil {
				return nil, errsList.mapErr(c.Request.Context(), err)
			}
			return ls, nil
		},
	})

	ez.Register(g, h.log, ez.Action[string, *domain.Listing]{
		Method: http.MethodGet,
		Path:   "/domain/:domain",
		Bind:   func(c *gin.Context) (string, error) { return c.Param("domain"), nil },
		Handler: func(c *gin.Context, name string) (*domain.Listing, error) {
			l, err := h.svc.GetActiveByName(c.Request.Context(), name)
			if err != nil {
				return nil, errsGet.mapErr(c.Request.Context(), err)
			}
			return l, nil
		},
	})
}

func (h *Listings) MountAdmin(g *gin.RouterGroup) {
	ez.Register(g, h.log, ez.Action[service.CreatePayload, *domain.Listing]{
		Method: http.MethodPost,
		Path:   "/domain",
		Status: http.StatusCreated,
		Bind:   bindCreate,
		Handler: func(c *gin.Context, in service.CreatePayload) (*domain.Listing, error) {
			l, err := h.svc.Create(c.Request.Context(), in)
			if err != nil {
				return nil, errsCreate.mapErr(c.Request.Context(), err)
			}
			return l, nil
		},
	})

	ez.Register(g, h.log, ez.Action[updateIn, *domain.Listing]{
		Method: http.MethodPut,
		Path:   "/domain/:id",
		Bind:   bindUpdate,
		Handler: func(c *gin.Context, in updateIn) (*domain.Listing, error) {
			l, err := h.svc.Update(c.Request.Context(), in.ID, in.Payload)
			if err != nil {
				return nil, errsUpdate.mapErr(c.Request.Context(), err)
			}
			return l, nil
		},
	})

	ez.Register(g, h.log, ez.Action[uint64, DeactivateResult]{
		Method: http.MethodDelete,
		Path:   "/domain/:id",
		Bind:   bindID(errsDeactivate),
		Handler: func(c *gin.Context, id uint64) (DeactivateResult, error) {
			l, err := h.svc.Deactivate(c.Request.Context(), id)
			if err != nil {
				return DeactivateResult{}, errsDeactivate.mapErr(c.Request.Context(), err)
			}
			return DeactivateResult{Message: "Domain deactivated successfully", Domain: l}, nil
		},
	})
}

func bindCreate(c *gin.Context) (service.CreatePayload, error) {
	body, err := ez.Body(c)
	if err != nil {
		return service.CreatePayload{}, err
	}
	p, err := service.ParseCreate(body)
	if err != nil {
		return service.CreatePayload{}, errsCreate.mapErr(c.Request.Context(), err)
	}
	return p, nil
}

// bindUpdate checks the id before it touches the body.
func bindUpdate(c *gin.Context) (updateIn, error) {
	id, err := bindID(errsUpdate)(c)
	if err != nil {
		return updateIn{}, err
	}
	body, err := ez.Body(c)
	if err != nil {
		return updateIn{}, err
	}
	p, err := service.ParseUpdate(body)
	if err != nil {
		return updateIn{}, errsUpdate.mapErr(c.Request.Context(), err)
	}
	return updateIn{ID: id, Payload: p}, nil
}

func bindID(o opErrors) func(c *gin.Context) (uint64, error) {
	return func(c *gin.Context) (uint64, error) {
		id, err := service.ParseID(c.Param("id"))
		if err != nil {
			return 0, o.mapErr(c.Request.Context(), err)
		}
		return id, nil
	}
}
