package web

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/reconcile/internal/core"
	"github.com/JonMunkholm/reconcile/internal/logging"
	"github.com/JonMunkholm/reconcile/internal/web/templates"
	"github.com/JonMunkholm/reconcile/internal/workbook"
)

const (
	// maxUploadFiles bounds one multipart request: the master plus sources.
	maxUploadFiles = 16
	// multipartMemory is kept in memory before parts spill to temp files.
	multipartMemory = 32 << 20
	// recentRuns is the number of runs listed on the index page.
	recentRuns = 10
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ============================================================================
// Pages
// ============================================================================

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	v := templates.UploadView{
		Sources:     s.service.ListSources(),
		HasDatabase: s.service.HasDatabase(),
		MaxFileSize: s.cfg.Reconcile.MaxFileSize,
	}
	for i, rec := range s.service.List() {
		if i == recentRuns {
			break
		}
		v.Recent = append(v.Recent, templates.RunLink{
			ID:         rec.ID,
			MasterName: rec.MasterName,
			CreatedAt:  rec.CreatedAt,
			Complete:   rec.Complete(),
		})
	}
	s.render(w, r, templates.UploadPage(v))
}

func (s *Server) handleRunPage(w http.ResponseWriter, r *http.Request) {
	rec, err := s.service.Get(chi.URLParam(r, "runID"))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	q := r.URL.Query()
	s.render(w, r, templates.RunPage(templates.NewRunView(rec, q.Get("field"), q.Get("master"))))
}

// render writes a full HTML page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render page", "path", r.URL.Path, "error", err)
	}
}

// ============================================================================
// Runs
// ============================================================================

// runResponse is the JSON answer to a reconciliation request.
type runResponse struct {
	RunID    string   `json:"run_id"`
	Complete bool     `json:"complete"`
	Failures []string `json:"failures,omitempty"`
	URL      string   `json:"url"`
	Workbook string   `json:"workbook"`
}

// handleReconcile runs the uploaded master and sources through the engine.
//
// Form fields: master (optional when a database is configured), sources
// (one or more files) and labels (comma separated, one per source).
func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	maxFile := s.cfg.Reconcile.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxFile*maxUploadFiles)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			s.respondError(w, r, fmt.Errorf("file too large: request exceeds %d bytes", maxBytes.Limit), http.StatusRequestEntityTooLarge)
			return
		}
		s.respondError(w, r, fmt.Errorf("no file provided: %w", err), http.StatusBadRequest)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	req, closeAll, err := s.buildRunRequest(r.MultipartForm)
	defer closeAll()
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			status = http.StatusBadRequest
		}
		s.respondError(w, r, err, status)
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	rec, err := s.service.Run(ctx, req)
	var runErr *core.RunError
	if err != nil && !(errors.As(err, &runErr) && rec != nil) {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	if runErr != nil {
		logging.FromContext(ctx).Warn("run incomplete", "run_id", rec.ID, "failures", len(rec.Failures))
	}

	resp := runResponse{
		RunID:    rec.ID,
		Complete: rec.Complete(),
		Failures: rec.Failures,
		URL:      "/runs/" + rec.ID,
		Workbook: "/api/runs/" + rec.ID + "/workbook",
	}
	switch {
	case isHTMX(r):
		w.Header().Set("HX-Redirect", resp.URL)
		writeJSON(w, http.StatusCreated, resp)
	case strings.Contains(r.Header.Get("Accept"), "text/html"):
		http.Redirect(w, r, resp.URL, http.StatusSeeOther)
	default:
		writeJSON(w, http.StatusCreated, resp)
	}
}

// buildRunRequest opens the uploaded files. The returned close function
// is always safe to call.
func (s *Server) buildRunRequest(form *multipart.Form) (core.RunRequest, func(), error) {
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	open := func(fh *multipart.FileHeader) (multipart.File, error) {
		if fh.Size > s.cfg.Reconcile.MaxFileSize {
			return nil, fmt.Errorf("file too large: %s is %d bytes, limit is %d", fh.Filename, fh.Size, s.cfg.Reconcile.MaxFileSize)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
		}
		opened = append(opened, f)
		return f, nil
	}

	var req core.RunRequest
	if masters := form.File["master"]; len(masters) > 0 {
		f, err := open(masters[0])
		if err != nil {
			return req, closeAll, err
		}
		req.MasterName = filepath.Base(masters[0].Filename)
		req.Master = f
	} else if !s.service.HasDatabase() {
		return req, closeAll, errors.New("no file provided: master schedule is required")
	}

	files := form.File["sources"]
	if len(files) == 0 {
		return req, closeAll, errors.New("no file provided: at least one source is required")
	}
	if len(files)+1 > maxUploadFiles {
		return req, closeAll, fmt.Errorf("too many files: at most %d sources per run", maxUploadFiles-1)
	}

	labels := splitLabels(form.Value["labels"])
	if len(labels) > len(files) {
		return req, closeAll, fmt.Errorf("%w: %d labels for %d sources", core.ErrMalformedSource, len(labels), len(files))
	}
	for i, fh := range files {
		f, err := open(fh)
		if err != nil {
			return req, closeAll, err
		}
		in := core.SourceInput{Name: filepath.Base(fh.Filename), Reader: f}
		if i < len(labels) {
			in.Label = labels[i]
		}
		req.Sources = append(req.Sources, in)
	}
	return req, closeAll, nil
}

// splitLabels flattens comma separated label fields, keeping empty
// positions so "a,,c" labels the first and third source only.
func splitLabels(values []string) []string {
	var out []string
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		for _, l := range strings.Split(v, ",") {
			out = append(out, strings.TrimSpace(l))
		}
	}
	return out
}

// runSummary is the JSON view of a stored run, without the merged grid.
type runSummary struct {
	ID         string               `json:"id"`
	MasterName string               `json:"master_name"`
	CreatedAt  time.Time            `json:"created_at"`
	DurationMS int64                `json:"duration_ms"`
	Complete   bool                 `json:"complete"`
	Failures   []string             `json:"failures,omitempty"`
	Labels     []string             `json:"labels"`
	Rows       int                  `json:"rows"`
	Sources    []core.SourceSummary `json:"sources"`
	Columns    []core.ColumnSummary `json:"columns,omitempty"`
}

func newRunSummary(rec *core.RunRecord, withColumns bool) runSummary {
	out := runSummary{
		ID:         rec.ID,
		MasterName: rec.MasterName,
		CreatedAt:  rec.CreatedAt,
		DurationMS: rec.Duration.Milliseconds(),
		Complete:   rec.Complete(),
		Failures:   rec.Failures,
	}
	if res := rec.Result; res != nil {
		out.Labels = res.Labels
		out.Sources = res.Sources
		if res.Table != nil {
			out.Rows = len(res.Table.Rows)
		}
		if withColumns {
			out.Columns = res.Columns
		}
	}
	return out
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	recs := s.service.List()
	out := make([]runSummary, len(recs))
	for i, rec := range recs {
		out[i] = newRunSummary(rec, false)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRunResult(w http.ResponseWriter, r *http.Request) {
	rec, err := s.service.Get(chi.URLParam(r, "runID"))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, newRunSummary(rec, true))
}

// handleDownloadWorkbook streams the result workbook of a run.
func (s *Server) handleDownloadWorkbook(w http.ResponseWriter, r *http.Request) {
	rec, err := s.service.Get(chi.URLParam(r, "runID"))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	f, err := workbook.Build(rec.Result)
	if err != nil {
		s.respondError(w, r, fmt.Errorf("build workbook: %w", err), http.StatusInternalServerError)
		return
	}
	defer func() { _ = f.Close() }()

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", workbookName(rec)))
	if _, err := f.WriteTo(w); err != nil {
		logging.FromContext(r.Context()).Error("write workbook", "run_id", rec.ID, "error", err)
	}
}

// workbookName derives the download name from the master file name.
func workbookName(rec *core.RunRecord) string {
	base := strings.TrimSuffix(filepath.Base(rec.MasterName), filepath.Ext(rec.MasterName))
	if base == "" || base == "." {
		base = "schedule"
	}
	short := rec.ID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("%s_reconciled_%s.xlsx", base, short)
}

// ============================================================================
// Metadata
// ============================================================================

// sourceResponse describes one registered source kind.
type sourceResponse struct {
	Key        string   `json:"key"`
	Label      string   `json:"label"`
	Format     string   `json:"format"`
	Extensions []string `json:"extensions"`
}

func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	infos := s.service.ListSources()
	out := make([]sourceResponse, len(infos))
	for i, info := range infos {
		out[i] = sourceResponse(info)
	}
	writeJSON(w, http.StatusOK, out)
}

// healthResponse reports service readiness.
type healthResponse struct {
	Status   string                `json:"status"`
	Database bool                  `json:"database"`
	Runs     core.RunLimiterStatus `json:"runs"`
	Stored   int                   `json:"stored_runs"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:   "ok",
		Database: s.service.HasDatabase(),
		Runs:     s.service.LimiterStatus(),
		Stored:   len(s.service.List()),
	})
}
