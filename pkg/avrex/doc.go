// Package avrex downloads report exports from the AssociationVoice portal.
//
// The portal has no API; avrex drives its HTML pages the way a person would.
// New logs in through the login form, follows the meta refresh redirect and
// derives the account scoped reports page:
//
//	c, err := avrex.New(ctx, avrex.Credentials{
//	    Username: "alice",
//	    Password: "secret",
//	    LoginURL: "https://secure.associationvoice.com/Account/Login/100",
//	})
//
// Empty credential fields fall back to AV_USERNAME, AV_PASSWORD and AV_URL.
//
// # Listing and Downloading
//
// ListReports scrapes the report selector. DownloadReport fills in the report
// form and streams the export to an io.Writer:
//
//	reports, err := c.ListReports(ctx)
//
//	f, err := os.Create("users.csv")
//	defer f.Close()
//	err = c.DownloadReport(ctx, avrex.DownloadRequest{
//	    Report: "Site Users", // or "3"
//	    Format: "csv",        // or "Comma Delimited", or its id
//	}, f)
//
// Reports and formats are matched case-insensitively by id, label, or, for
// formats, the aliases in FormatAliases.
//
// # Errors
//
// New returns *ConfigurationError or *LoginError; DownloadReport returns
// *UnknownChoiceError for keys the portal does not offer. Any non-success HTTP
// response surfaces as *browser.HTTPError.
package avrex
