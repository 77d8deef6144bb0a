package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder()
	require.NoError(t, r.Register(reg))
	require.NoError(t, r.Register(reg))

	r.RepositoryRegistered("generic")
	r.RepositoryRegistered("generic")
	r.FragmentRegistered("generic")
	r.StrictRejection("mongo")
	r.ObserveScan("generic", time.Now())

	assert.Equal(t, 2.0, testutil.ToFloat64(r.RepositoriesRegistered.WithLabelValues("generic")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.FragmentsRegistered.WithLabelValues("generic")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.StrictRejections.WithLabelValues("mongo")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.ScanDuration))
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.RepositoryRegistered("x")
		r.FragmentRegistered("x")
		r.StrictRejection("x")
		r.ObserveScan("x", time.Now())
	})
}
