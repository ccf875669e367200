package avrex

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"
)

const (
	testUser     = "alice"
	testPassword = "secret"
	testAssnID   = "42"
	sessionToken = "s3ss10n"
)

const loginPage = `<html><body>
<form id="form1" action="/Account/Login/100" method="post">
	<input type="hidden" name="__VIEWSTATE" value="vs">
	<input type="text" name="user_name">
	<input type="password" name="password">
	<input type="submit" name="login" value="Log In">
</form>
</body></html>`

const reportsPage = `<html><body>
<form id="form1" action="
	/Reports/42/Run
" method="post">
	<select id="report_id" name="report_id">
		<option value="0">-- Select a report --</option>
		<option value="">(none)</option>
		<option value="3">Site Users</option>
		<option value="4">Site Access</option>
		<option value="5"></option>
	</select>
	<input type="text" name="start_date" value="">
	<input type="text" name="end_date" value="">
	<select id="format_id" name="format_id">
		<option value="0">-- Select a format --</option>
		<option value="1">XML</option>
		<option value="2">Comma Delimited</option>
		<option value="3">Tab Delimited</option>
	</select>
	<input type="submit" name="run" value="Run">
</form>
</body></html>`

// portal is an in-memory stand-in for the report portal.
type portal struct {
	*httptest.Server

	// loginHTML overrides the login page markup when non-empty.
	loginHTML string
	// successHTML overrides the page served after a good login when non-empty.
	successHTML string
	// reportsPages are served in turn by the reports page, the last one
	// repeating. reportsPage is served when empty.
	reportsPages []string
	// reportsStatus overrides the reports page status when non-zero.
	reportsStatus int
	// exportStatus overrides the export response status when non-zero.
	exportStatus int
	// exportRows and exportDelay stream that many extra rows, flushing and
	// pausing before each one.
	exportRows  int
	exportDelay time.Duration

	mu          sync.Mutex
	reportsHits int
	submissions []url.Values
}

// newPortal starts a portal. opts run before the server starts.
func newPortal(t *testing.T, opts ...func(*portal)) *portal {
	t.Helper()
	p := &portal{}
	for _, opt := range opts {
		opt(p)
	}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /Account/Login/100", func(w http.ResponseWriter, r *http.Request) {
		if p.loginHTML != "" {
			fmt.Fprint(w, p.loginHTML)
			return
		}
		fmt.Fprint(w, loginPage)
	})
	mux.HandleFunc("POST /Account/Login/100", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.PostForm.Get("user_name") != testUser || r.PostForm.Get("password") != testPassword {
			fmt.Fprint(w, `<html><body>
				<div class="clsError">
					<span>Invalid credentials</span>
				</div>
			</body></html>`)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: sessionToken, Path: "/"})
		if p.successHTML != "" {
			fmt.Fprint(w, p.successHTML)
			return
		}
		fmt.Fprintf(w, `<html><head>
			<meta http-equiv="refresh" content="0; url=/Home/Index?assn_id=%s&t=123 ">
		</head><body>Redirecting...</body></html>`, testAssnID)
	})
	mux.HandleFunc("GET /Home/Index", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		fmt.Fprint(w, `<html><body>Welcome</body></html>`)
	})
	mux.HandleFunc("GET /Reports/42", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		if p.reportsStatus != 0 {
			http.Error(w, "unavailable", p.reportsStatus)
			return
		}
		p.mu.Lock()
		page := reportsPage
		if n := len(p.reportsPages); n > 0 {
			page = p.reportsPages[min(p.reportsHits, n-1)]
		}
		p.reportsHits++
		p.mu.Unlock()
		fmt.Fprint(w, page)
	})
	mux.HandleFunc("POST /Reports/42/Run", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		_ = r.ParseForm()
		p.mu.Lock()
		p.submissions = append(p.submissions, r.PostForm)
		p.mu.Unlock()

		if p.exportStatus != 0 {
			http.Error(w, "export failed", p.exportStatus)
			return
		}

		w.Header().Set("Content-Type", "text/csv")
		flusher, _ := w.(http.Flusher)
		fmt.Fprintf(w, "report,format,start,end\n")
		if flusher != nil {
			flusher.Flush()
		}
		fmt.Fprintf(w, "%s,%s,%s,%s\n",
			r.PostForm.Get("report_id"), r.PostForm.Get("format_id"),
			r.PostForm.Get("start_date"), r.PostForm.Get("end_date"))
		for i := range p.exportRows {
			if flusher != nil {
				flusher.Flush()
			}
			time.Sleep(p.exportDelay)
			fmt.Fprintf(w, "row,%d,,\n", i)
		}
	})

	p.Server = httptest.NewServer(mux)
	t.Cleanup(p.Close)
	return p
}

func (p *portal) loginURL() string {
	return p.URL + "/Account/Login/100"
}

func (p *portal) reportsRequests() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reportsHits
}

func (p *portal) submitted() []url.Values {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]url.Values(nil), p.submissions...)
}

func authorized(r *http.Request) bool {
	c, err := r.Cookie("session")
	return err == nil && c.Value == sessionToken
}
