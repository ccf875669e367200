// Package browser emulates a stateful web browser session on top of net/http.
//
// A Browser keeps a cookie jar and a "current page" (the last HTML document it
// navigated to), so that relative links and form actions resolve the way they
// would in a real browser. Pages are parsed with goquery.
//
// # Quick Start
//
//	b, err := browser.New(browser.WithTimeout(30 * time.Second))
//	page, err := b.Open(ctx, "https://example.com/login")
//
//	form, err := b.SelectForm("#form1")
//	form.Set("user_name", "alice")
//	form.Set("password", "secret")
//	page, err = b.Submit(ctx, form)
//
// # Streaming Submissions
//
// Forms that produce file downloads are submitted with SubmitStream, which
// returns the raw *http.Response without replacing the current page. The
// caller must close the response body:
//
//	resp, err := b.SubmitStream(ctx, form)
//	if err != nil {
//	    return err
//	}
//	defer resp.Body.Close()
//
// # Errors
//
// Any response outside the 2xx range is returned as an *HTTPError. Nothing is
// retried.
//
// A Browser is not safe for concurrent use.
package browser
