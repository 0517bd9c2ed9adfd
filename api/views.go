package api

import (
	"embed"
	"html/template"
	"log/slog"

	"github.com/SivaTeja36/Bus-reservation/internal/domain"
	"github.com/SivaTeja36/Bus-reservation/internal/logging"
	"github.com/SivaTeja36/Bus-reservation/internal/notify"
	"github.com/gin-gonic/gin"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Templates parses the embedded page templates.
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, "templates/*.tmpl"))
}

type navItem struct {
	Label  string
	Href   string
	Active bool
}

// shell is the data every page layout needs.
type shell struct {
	Title   string
	User    *domain.User
	Nav     []navItem
	Notices []notify.Notice
}

// navigation lists the menu for u. Branches and Users appear only for
// Super Admins.
func navigation(u *domain.User, active string) []navItem {
	if u == nil {
		return nil
	}
	items := []navItem{{Label: "Dashboard", Href: "/dashboard", Active: active == "dashboard"}}
	for _, r := range domain.Resources() {
		if !r.AllowedFor(u) {
			continue
		}
		items = append(items, navItem{Label: r.Label(), Href: "/" + string(r), Active: active == string(r)})
	}
	return items
}

func shellData(c *gin.Context, title, active string) shell {
	user := currentUser(c)
	return shell{
		Title: title,
		User:  user,
		Nav:   navigation(user, active),
	}
}

// drainNotices shows nothing rather than failing the page when the queue
// is unreachable.
func drainNotices(c *gin.Context, q notify.Queue, logger *slog.Logger) []notify.Notice {
	list, err := q.Drain(c.Request.Context(), sessionID(c))
	if err != nil {
		logging.FromContext(c.Request.Context(), logger).Warn("drain notices", "error", err)
	}
	return list
}

func pushNotice(c *gin.Context, q notify.Queue, logger *slog.Logger, n notify.Notice) {
	if err := q.Push(c.Request.Context(), sessionID(c), n); err != nil {
		logging.FromContext(c.Request.Context(), logger).Warn("push notice", "error", err)
	}
}
