package templates

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/reconcile/internal/core"
)

const stampLayout = "2006-01-02 15:04:05"

func runURL(id string) templ.SafeURL {
	return templ.URL("/runs/" + url.PathEscape(id))
}

func workbookURL(id string) templ.SafeURL {
	return templ.URL("/api/runs/" + url.PathEscape(id) + "/workbook")
}

// acceptList joins the extensions of every registered source for the file picker.
func acceptList(sources []core.SourceInfo) string {
	var exts []string
	for _, s := range sources {
		exts = append(exts, s.Extensions...)
	}
	return strings.Join(exts, ",")
}

func extensions(s core.SourceInfo) string {
	return strings.Join(s.Extensions, " ")
}

func megabytes(n int64) int64 {
	return n >> 20
}

func stamp(t time.Time) string {
	return t.Format(stampLayout)
}

func runCaption(v RunView) string {
	return fmt.Sprintf("Run %s, %s, %d ms", v.ID, stamp(v.CreatedAt), v.Duration.Milliseconds())
}

func outcomeClass(o core.Outcome) string {
	return "o-" + o.String()
}
