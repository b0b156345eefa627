package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/enquesta/internal/core/domain"
)

func TestAdmissionMetrics(t *testing.T) {
	reg := NewRegistry()
	m := NewAdmissionMetrics(reg)

	m.VoteAccepted(domain.AccessPublic)
	m.VoteAccepted(domain.AccessPublic)
	m.VoteRejected(domain.ReasonAlreadyVoted)
	m.WriteConflict()
	m.ObserveEvaluation(0.0002)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.accepted.WithLabelValues("public")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejected.WithLabelValues("already_voted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.conflicts))

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "enquesta_admission_votes_accepted_total")
	assert.Contains(t, string(body), "enquesta_admission_evaluation_seconds_bucket")
	assert.Contains(t, string(body), "go_goroutines")
}
