package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/bookbuster/lending/internal/errs"
	md "github.com/Astemirdum/bookbuster/pkg/middleware"
	"github.com/Astemirdum/bookbuster/pkg/validate"
)

type Handler struct {
	lendingSvc LendingService
	log        *zap.Logger
}

func New(lendingSvc LendingService, log *zap.Logger) *Handler {
	return &Handler{
		lendingSvc: lendingSvc,
		log:        log.Named("handler"),
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPost, http.MethodDelete},
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(h.log)),
		md.NewRequestID(),
		md.NewRateLimiter(apiRPS),
	)

	api.GET("/books", h.ListBooks)
	api.POST("/books", h.AddBook)
	api.GET("/books/:id", h.GetBook)
	api.PUT("/books/:id", h.UpdateBook)
	api.DELETE("/books/:id", h.DeleteBook)

	api.GET("/members", h.ListMembers)
	api.POST("/members", h.AddMember)
	api.PUT("/members/:id", h.UpdateMember)
	api.DELETE("/members/:id", h.DeleteMember)

	api.GET("/staff", h.ListStaff)
	api.POST("/staff", h.AddStaff)
	api.PUT("/staff/:id", h.UpdateStaff)
	api.DELETE("/staff/:id", h.DeleteStaff)

	api.GET("/loans", h.ListLoans)
	api.POST("/loans", h.AddLoan)
	api.GET("/loans/fine-eligible", h.ListFineEligibleLoans)
	api.GET("/loans/:id", h.GetLoan)
	api.PUT("/loans/:id", h.UpdateLoan)
	api.DELETE("/loans/:id", h.DeleteLoan)
	api.POST("/loans/:id/return", h.ReturnLoan)

	api.GET("/fines", h.ListFines)
	api.POST("/fines", h.AddFine)
	api.DELETE("/fines/:id", h.DeleteFine)

	api.GET("/payments", h.ListPayments)
	api.POST("/payments", h.AddPayment)
	api.DELETE("/payments/:id", h.DeletePayment)

	api.GET("/reports/loan-fines", h.LoanFineDetails)
	api.GET("/reports/member-balances", h.MemberBalances)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	if err := h.lendingSvc.Health(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	return c.String(http.StatusOK, "OK")
}

// httpError maps a service error onto its HTTP status.
func (h *Handler) httpError(err error) error {
	switch errs.KindOf(err) {
	case errs.KindValidation:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errs.KindNotFound:
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errs.KindBusinessRule, errs.KindConstraint:
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	h.log.Error("internal", zap.Error(err))
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, errors.New("id is invalid"))
	}
	return id, nil
}

func paging(c echo.Context) (page, size int, err error) {
	if pageParam := c.QueryParam("page"); pageParam != "" {
		if page, err = strconv.Atoi(pageParam); err != nil {
			return 0, 0, echo.NewHTTPError(http.StatusBadRequest, errors.New("page is invalid"))
		}
	}
	if sizeParam := c.QueryParam("size"); sizeParam != "" {
		if size, err = strconv.Atoi(sizeParam); err != nil {
			return 0, 0, echo.NewHTTPError(http.StatusBadRequest, errors.New("size is invalid"))
		}
	}
	return page, size, nil
}

func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return he
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
