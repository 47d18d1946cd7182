package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"btc-basis/internal/analysis"
	"btc-basis/internal/api/models"
	"btc-basis/internal/basis"
	"btc-basis/internal/data"
	"btc-basis/internal/model"
	"btc-basis/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// SampleFileName is the upload name used when a request carries no file.
const SampleFileName = "sample_data.csv"

// multipartOverhead is the body allowance beyond the file itself for part
// headers, boundaries and form fields.
const multipartOverhead = 64 << 10

// BasisHandler handles cost-basis requests
type BasisHandler struct {
	svc            *service.Service
	defaultMethod  model.Method
	maxUploadBytes int64
}

// NewBasisHandler creates a new basis handler
func NewBasisHandler(svc *service.Service, defaultMethod model.Method, maxUploadBytes int64) *BasisHandler {
	return &BasisHandler{
		svc:            svc,
		defaultMethod:  defaultMethod,
		maxUploadBytes: maxUploadBytes,
	}
}

// Compute handles POST /api/v1/basis
func (h *BasisHandler) Compute(c *gin.Context) {
	h.limitBody(c)

	// method and include_ledger may come from the query string or the form.
	var req models.BasisRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}
	switch c.ContentType() {
	case binding.MIMEMultipartPOSTForm, binding.MIMEPOSTForm:
		if err := c.ShouldBind(&req); err != nil {
			if tooLarge(err) {
				h.abortTooLarge(c)
				return
			}
			abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
			return
		}
	}

	method, err := h.method(req.Method)
	if err != nil {
		writeError(c, err)
		return
	}

	name, raw, ok := h.readUpload(c)
	if !ok {
		return
	}

	comp, err := h.svc.Compute(c.Request.Context(), name, raw, method)
	if err != nil {
		writeError(c, err)
		return
	}
	log.Printf("BasisHandler: %s %s rows=%d cached=%v", name, method, len(comp.Result.Rows), comp.Cached)

	response := models.BasisResponse{
		ID:       comp.ID,
		Status:   "completed",
		Cached:   comp.Cached,
		FileName: name,
		Method:   comp.Result.Method.String(),
		Policy:   comp.Result.Policy.String(),
		Summary:  convertSummary(comp.Result.Final()),
	}
	if req.IncludeLedger {
		response.Ledger = convertLedger(comp.Result.Rows)
	}
	c.JSON(http.StatusOK, response)
}

// Compare handles POST /api/v1/basis/compare
// It runs every method over the same upload and ranks them by final P&L.
func (h *BasisHandler) Compare(c *gin.Context) {
	h.limitBody(c)
	name, raw, ok := h.readUpload(c)
	if !ok {
		return
	}

	ids := map[model.Method]string{}
	results := make([]*basis.Result, 0, len(model.Methods()))
	for _, m := range model.Methods() {
		comp, err := h.svc.Compute(c.Request.Context(), name, raw, m)
		if err != nil {
			writeError(c, err)
			return
		}
		ids[m] = comp.ID
		results = append(results, comp.Result)
	}

	ranked := analysis.RankMethods(results)
	comparison := make([]models.ComparisonResult, len(ranked))
	for i, r := range ranked {
		comparison[i] = models.ComparisonResult{
			Rank:    i + 1,
			ID:      ids[r.Method],
			Method:  r.Method.String(),
			Summary: convertSummary(r.Summary),
		}
	}
	c.JSON(http.StatusOK, models.CompareResponse{FileName: name, Comparison: comparison})
}

// GetLedger handles GET /api/v1/basis/:id/ledger
func (h *BasisHandler) GetLedger(c *gin.Context) {
	var q models.LedgerQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}

	comp, err := h.svc.Lookup(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	switch strings.ToLower(q.Format) {
	case "", "json":
		c.JSON(http.StatusOK, models.LedgerResponse{
			ID:     comp.ID,
			Method: comp.Result.Method.String(),
			Ledger: convertLedger(comp.Result.Rows),
		})
	case "csv":
		var buf bytes.Buffer
		if err := basis.WriteLedgerCSV(&buf, comp.Result.Rows); err != nil {
			writeError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", basis.ExportFileName(time.Now())))
		c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
	default:
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", fmt.Sprintf("unsupported format %q (expected json or csv)", q.Format), nil)
	}
}

// GetChart handles GET /api/v1/basis/:id/chart
func (h *BasisHandler) GetChart(c *gin.Context) {
	var q models.ChartQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}
	metrics, err := model.ParseMetrics(q.Metrics)
	if err != nil {
		writeError(c, err)
		return
	}

	comp, err := h.svc.Lookup(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ChartResponse{
		ID:     comp.ID,
		Method: comp.Result.Method.String(),
		Series: convertSeries(analysis.BuildSeries(comp.Result.Rows, metrics)),
	})
}

// ListMethods handles GET /api/v1/methods
func (h *BasisHandler) ListMethods(c *gin.Context) {
	methods := make([]models.MethodInfo, 0, len(model.Methods()))
	for _, m := range model.Methods() {
		methods = append(methods, models.MethodInfo{
			Name:        m.String(),
			Description: m.Description(),
			Default:     m == h.defaultMethod,
		})
	}
	c.JSON(http.StatusOK, gin.H{"methods": methods})
}

// ListMetrics handles GET /api/v1/metrics
func ListMetrics(c *gin.Context) {
	defaults := map[model.Metric]bool{}
	for _, m := range model.DefaultMetrics() {
		defaults[m] = true
	}
	metrics := make([]models.MetricInfo, 0, len(model.Metrics()))
	for _, m := range model.Metrics() {
		metrics = append(metrics, models.MetricInfo{Name: string(m), Default: defaults[m]})
	}
	c.JSON(http.StatusOK, gin.H{"metrics": metrics})
}

// DownloadSample handles GET /api/v1/sample
func DownloadSample(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="btcBasis_file_format.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(data.SampleCSV))
}

func (h *BasisHandler) method(s string) (model.Method, error) {
	if strings.TrimSpace(s) == "" {
		return h.defaultMethod, nil
	}
	return model.ParseMethod(s)
}

// readUpload returns the "file" part of a multipart request, or the sample
// data when the request has none. It writes the error response itself.
func (h *BasisHandler) readUpload(c *gin.Context) (string, []byte, bool) {
	fh, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return SampleFileName, []byte(data.SampleCSV), true
	}
	if tooLarge(err) {
		h.abortTooLarge(c)
		return "", nil, false
	}
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return "", nil, false
	}
	if h.maxUploadBytes > 0 && fh.Size > h.maxUploadBytes {
		h.abortTooLarge(c)
		return "", nil, false
	}

	f, err := fh.Open()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return "", nil, false
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return "", nil, false
	}
	return fh.Filename, raw, true
}

// limitBody caps how much of the request body multipart parsing may read, so
// an oversized upload fails while it streams in.
func (h *BasisHandler) limitBody(c *gin.Context) {
	if h.maxUploadBytes <= 0 || c.Request.Body == nil {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)
}

func (h *BasisHandler) abortTooLarge(c *gin.Context) {
	abortWithError(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE",
		fmt.Sprintf("upload exceeds the %d byte limit", h.maxUploadBytes), nil)
}

func tooLarge(err error) bool {
	if err == nil {
		return false
	}
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}
