package api

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/SivaTeja36/Bus-reservation/internal/domain"
	"github.com/SivaTeja36/Bus-reservation/internal/logging"
	"github.com/SivaTeja36/Bus-reservation/internal/notify"
	"github.com/SivaTeja36/Bus-reservation/internal/service/resources"
	"github.com/SivaTeja36/Bus-reservation/internal/table"
	"github.com/gin-gonic/gin"
)

type pageState string

const (
	pageReady pageState = "ready"
	pageError pageState = "error"
)

type resourcePage struct {
	shell
	Resource  domain.Resource
	Listable  bool
	State     pageState
	Error     string
	Table     table.Table
	FormOpen  bool
	Fields    []formField
	Values    formValues
	ExportURL string
}

type dashboardPage struct {
	shell
	Stats *resources.Stats
	Error string
}

type ResourceHandler struct {
	service resources.ResourceUseCase
	notices notify.Queue
	logger  *slog.Logger
}

func NewResourceHandler(service resources.ResourceUseCase, notices notify.Queue, logger *slog.Logger) *ResourceHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResourceHandler{service: service, notices: notices, logger: logger}
}

func (h *ResourceHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.home)
	router.GET("/dashboard", h.dashboard)
	for _, r := range domain.Resources() {
		path := "/" + string(r)
		router.GET(path, RequireAccess(r), h.list(r))
		router.POST(path, RequireAccess(r), h.create(r))
		if r.Listable() {
			router.GET(path+"/export.pdf", RequireAccess(r), h.export(r))
		}
	}
}

func (h *ResourceHandler) home(c *gin.Context) {
	c.Redirect(http.StatusFound, "/"+string(domain.ResourceTickets))
}

func (h *ResourceHandler) dashboard(c *gin.Context) {
	page := dashboardPage{shell: h.shell(c, "Dashboard", "dashboard")}
	stats, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		logging.FromContext(c.Request.Context(), h.logger).Warn("dashboard failed", "error", err)
		page.Error = errorMessage(err, "Failed to load dashboard")
		c.HTML(http.StatusBadGateway, "dashboard.tmpl", page)
		return
	}
	page.Stats = stats
	c.HTML(http.StatusOK, "dashboard.tmpl", page)
}

// list renders the page in its Ready or Error state. ?create=1 opens the
// create form.
func (h *ResourceHandler) list(r domain.Resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := h.page(c, r)
		page.FormOpen = c.Query("create") == "1" || !r.Listable()
		if page.FormOpen {
			page.Fields = formFields(c.Request.Context(), h.service, r)
		}
		status := h.load(c, &page)
		c.HTML(status, "resource.tmpl", page)
	}
}

// create submits the form. Success queues a notice and redirects to the
// list; failure re-renders the open form with the entered values.
func (h *ResourceHandler) create(r domain.Resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		fields := formFields(ctx, h.service, r)
		values := formValues{}
		for _, f := range fields {
			values[f.Name] = c.PostForm(f.Name)
		}

		if err := submit(ctx, h.service, r, values); err != nil {
			delete(values, "password")
			page := h.page(c, r)
			page.FormOpen = true
			page.Fields = fields
			page.Values = values
			page.Notices = append(page.Notices, notify.Error(errorMessage(err, fmt.Sprintf("Failed to create %s", r.Singular()))))
			h.load(c, &page)
			c.HTML(http.StatusUnprocessableEntity, "resource.tmpl", page)
			return
		}

		pushNotice(c, h.notices, h.logger, notify.Success(r.CreatedMessage()))
		c.Redirect(http.StatusSeeOther, "/"+string(r))
	}
}

func (h *ResourceHandler) export(r domain.Resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		tbl, err := h.service.Table(c.Request.Context(), r)
		if err != nil {
			logging.FromContext(c.Request.Context(), h.logger).Warn("export failed", "resource", r, "error", err)
			c.String(http.StatusBadGateway, errorMessage(err, fmt.Sprintf("Failed to load %s", r)))
			return
		}
		var buf bytes.Buffer
		if err := table.WritePDF(&buf, r.Label(), tbl); err != nil {
			logging.FromContext(c.Request.Context(), h.logger).Error("render pdf", "resource", r, "error", err)
			c.String(http.StatusInternalServerError, "Failed to export %s", r)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, r))
		c.Data(http.StatusOK, "application/pdf", buf.Bytes())
	}
}

func (h *ResourceHandler) shell(c *gin.Context, title, active string) shell {
	s := shellData(c, title, active)
	s.Notices = drainNotices(c, h.notices, h.logger)
	return s
}

func (h *ResourceHandler) page(c *gin.Context, r domain.Resource) resourcePage {
	return resourcePage{
		shell:     h.shell(c, r.Label(), string(r)),
		Resource:  r,
		Listable:  r.Listable(),
		State:     pageReady,
		Values:    formValues{},
		ExportURL: "/" + string(r) + "/export.pdf",
	}
}

// load fills the table through the cache and returns the status the page
// should be served with.
func (h *ResourceHandler) load(c *gin.Context, page *resourcePage) int {
	if !page.Listable {
		return http.StatusOK
	}
	tbl, err := h.service.Table(c.Request.Context(), page.Resource)
	if err != nil {
		logging.FromContext(c.Request.Context(), h.logger).Warn("list failed", "resource", page.Resource, "error", err)
		page.State = pageError
		page.Error = errorMessage(err, fmt.Sprintf("Failed to load %s", page.Resource))
		return http.StatusBadGateway
	}
	page.Table = tbl
	return http.StatusOK
}

// errorMessage returns the fixed user-facing text for classified errors
// and fallback for anything else.
func errorMessage(err error, fallback string) string {
	if domain.IsRequest(err) || domain.IsAuthentication(err) {
		return err.Error()
	}
	return fallback
}
