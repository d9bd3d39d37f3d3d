// Package view renders the HTML pages and the fragments patched in over
// datastar SSE. Pages share one layout; every page and fragment is exposed
// as a templ.Component.
package view

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/a-h/templ"
	"github.com/msomdec/zatigwera/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format(domain.DateLayout)
	},
	"today": func() string {
		return time.Now().Format(domain.DateLayout)
	},
	"genders": func() []domain.Gender {
		return domain.Genders
	},
}

var (
	base  = template.Must(template.New("base").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/partials.html"))
	pages = map[string]*template.Template{}
)

func init() {
	for _, name := range []string{"login", "admin_home", "register_user", "records", "reporter_home", "funeral_form", "error"} {
		t := template.Must(base.Clone())
		pages[name] = template.Must(t.ParseFS(templateFS, "templates/"+name+".html"))
	}
}

// page renders a full document through the shared layout.
func page(name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		t, ok := pages[name]
		if !ok {
			return fmt.Errorf("unknown page %q", name)
		}
		return t.ExecuteTemplate(w, "layout", data)
	})
}

// fragment renders a named partial on its own.
func fragment(name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return base.ExecuteTemplate(w, name, data)
	})
}

// NavLink is one entry in the header navigation.
type NavLink struct {
	Href  string
	Label string
}

// Nav is the signed-in header: who is logged in and where they can go.
type Nav struct {
	FullName  string
	RoleLabel string
	Links     []NavLink
}

// NavFor builds the header for a session.
func NavFor(sess *domain.Session) *Nav {
	if sess == nil {
		return nil
	}
	nav := &Nav{FullName: sess.FullName, RoleLabel: sess.Role.Label()}
	switch sess.Role {
	case domain.RoleAdmin:
		nav.Links = []NavLink{
			{Href: "/admin", Label: "Statistics"},
			{Href: "/admin/users/new", Label: "Register user"},
			{Href: "/admin/records", Label: "Funeral records"},
		}
	case domain.RoleReporter:
		nav.Links = []NavLink{
			{Href: "/reporter", Label: "Home"},
			{Href: "/reporter/funerals/new", Label: "Log funeral"},
			{Href: "/reporter/records", Label: "My records"},
		}
	}
	return nav
}

// Page carries what the layout and the flash partial need.
type Page struct {
	Title   string
	Nav     *Nav
	Error   string
	Success string
}

func LoginPage(username, errMsg string) templ.Component {
	return page("login", struct {
		Page
		Username string
	}{
		Page:     Page{Title: "Log in", Error: errMsg},
		Username: username,
	})
}

// AdminHomePage is the statistics landing page.
func AdminHomePage(nav *Nav, total int, records []domain.FuneralRecord) templ.Component {
	return page("admin_home", struct {
		Page
		Total   int
		Records []domain.FuneralRecord
	}{
		Page:    Page{Title: "Statistics", Nav: nav},
		Total:   total,
		Records: records,
	})
}

// UserForm holds submitted registration values for redisplay. Passwords are
// never echoed back.
type UserForm struct {
	FullName    string
	Username    string
	Village     string
	DateOfBirth string
	Gender      string
	Role        string
}

func RegisterUserPage(nav *Nav, form UserForm, errMsg, success string) templ.Component {
	return page("register_user", struct {
		Page
		Form UserForm
	}{
		Page: Page{Title: "Register user", Nav: nav, Error: errMsg, Success: success},
		Form: form,
	})
}

// RecordsView describes a records listing and where its actions live.
type RecordsView struct {
	Heading    string
	Admin      bool
	BasePath   string // listing path; export and search hang off it
	ChartsPath string
	Query      string
	Records    []domain.FuneralRecord
}

func RecordsPage(nav *Nav, rv RecordsView) templ.Component {
	return page("records", struct {
		Page
		RecordsView
	}{
		Page:        Page{Title: rv.Heading, Nav: nav},
		RecordsView: rv,
	})
}

// RecordsResults is the part of the records page replaced on live search:
// export links, the table and the gender pie, all for rv.Query.
func RecordsResults(rv RecordsView) templ.Component {
	return fragment("records_results", rv)
}

func ReporterHomePage(nav *Nav, total int) templ.Component {
	name := ""
	if nav != nil {
		name = nav.FullName
	}
	return page("reporter_home", struct {
		Page
		FullName string
		Total    int
	}{
		Page:     Page{Title: "Home", Nav: nav},
		FullName: name,
		Total:    total,
	})
}

// FuneralForm holds submitted funeral values for redisplay.
type FuneralForm struct {
	FullName     string
	Gender       string
	Village      string
	CauseOfDeath string
	DateOfBirth  string
	DateOfDeath  string
}

// AgePreview is the read-only age field on the funeral form.
type AgePreview struct {
	Age int
	OK  bool
}

func FuneralFormPage(nav *Nav, form FuneralForm, age AgePreview, errMsg, success string) templ.Component {
	return page("funeral_form", struct {
		Page
		Form FuneralForm
		Age  AgePreview
	}{
		Page: Page{Title: "Log funeral", Nav: nav, Error: errMsg, Success: success},
		Form: form,
		Age:  age,
	})
}

// AgeField is the fragment patched in while the reporter edits the dates.
func AgeField(age AgePreview) templ.Component {
	return fragment("age_preview", age)
}

// ErrorPage renders a status page; nav may be nil for signed-out visitors.
func ErrorPage(nav *Nav, title, message string) templ.Component {
	return page("error", struct {
		Page
		Message string
	}{
		Page:    Page{Title: title, Nav: nav},
		Message: message,
	})
}
