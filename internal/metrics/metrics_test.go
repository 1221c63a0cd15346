package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveExport(t *testing.T) {
	okBefore := testutil.ToFloat64(Jobs.WithLabelValues("export", "csv", "metrics_note", OutcomeOK))
	rowsBefore := testutil.ToFloat64(Rows.WithLabelValues("export", "csv", "metrics_note"))

	ObserveExport("csv", "metrics_note", 3, 20*time.Millisecond, nil)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(Jobs.WithLabelValues("export", "csv", "metrics_note", OutcomeOK)))
	assert.Equal(t, rowsBefore+3, testutil.ToFloat64(Rows.WithLabelValues("export", "csv", "metrics_note")))
}

func TestObserveImportError(t *testing.T) {
	errBefore := testutil.ToFloat64(Jobs.WithLabelValues("import", "excel", "metrics_note", OutcomeError))
	rowsBefore := testutil.ToFloat64(Rows.WithLabelValues("import", "excel", "metrics_note"))

	ObserveImport("excel", "metrics_note", 2, time.Millisecond, errors.New("row 3 rejected"))

	assert.Equal(t, errBefore+1, testutil.ToFloat64(Jobs.WithLabelValues("import", "excel", "metrics_note", OutcomeError)))
	assert.Equal(t, rowsBefore+2, testutil.ToFloat64(Rows.WithLabelValues("import", "excel", "metrics_note")))
}
