package forecast

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"PatientPulse/internal/domain/models"
	"PatientPulse/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func forestYAML(t *testing.T) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("kind: forest\nfeatures:\n")
	for _, n := range models.FeatureNames {
		b.WriteString("  - " + n + "\n")
	}
	// tree 1 splits on hour <= 12, tree 2 on lag1 <= 30
	b.WriteString(`trees:
  - nodes:
      - {feature: 1, threshold: 12, left: 1, right: 2}
      - {left: 0, right: 0, value: 10}
      - {left: 0, right: 0, value: 50}
  - nodes:
      - {feature: 3, threshold: 30, left: 1, right: 2}
      - {left: 0, right: 0, value: 20}
      - {left: 0, right: 0, value: 40}
`)
	return b.String()
}

func TestForestModel_MeanOfTrees(t *testing.T) {
	m, err := ParseModel([]byte(forestYAML(t)))
	require.NoError(t, err)

	var fv models.FeatureVector
	fv[models.FeatHour] = 14
	fv[models.FeatLag1] = 25
	got, err := m.Predict(context.Background(), fv)
	require.NoError(t, err)
	assert.InDelta(t, 35.0, got, 1e-9)

	fv[models.FeatHour] = 12
	fv[models.FeatLag1] = 31
	got, err = m.Predict(context.Background(), fv)
	require.NoError(t, err)
	assert.InDelta(t, 25.0, got, 1e-9)
}

func TestForestModel_RejectsWrongColumns(t *testing.T) {
	names := models.FeatureNames[:]
	swapped := append([]string(nil), names...)
	swapped[0], swapped[1] = swapped[1], swapped[0]
	tree := ForestTree{Nodes: []ForestNode{{Value: 1}}}

	_, err := NewForestModel(swapped, []ForestTree{tree})
	assert.Error(t, err)
	_, err = NewForestModel(names[:4], []ForestTree{tree})
	assert.Error(t, err)
	_, err = NewForestModel(names, nil)
	assert.Error(t, err)
}

func TestForestModel_RejectsCycles(t *testing.T) {
	tree := ForestTree{Nodes: []ForestNode{
		{Feature: 0, Left: 1, Right: 2},
		{Feature: 0, Left: 0, Right: 2},
		{Value: 1},
	}}
	_, err := NewForestModel(models.FeatureNames[:], []ForestTree{tree})
	assert.Error(t, err)
}

func TestLinearModel(t *testing.T) {
	m, err := ParseModel([]byte(`
kind: linear
intercept: 2
coefficients:
  lag1: 0.5
  rolling_24h: 0.25
`))
	require.NoError(t, err)

	var fv models.FeatureVector
	fv[models.FeatLag1] = 40
	fv[models.FeatRolling24h] = 20
	got, err := m.Predict(context.Background(), fv)
	require.NoError(t, err)
	assert.InDelta(t, 27.0, got, 1e-9)

	_, err = NewLinearModel(0, map[string]float64{"not_a_feature": 1})
	assert.Error(t, err)
}

func TestParseModel_UnknownKind(t *testing.T) {
	_, err := ParseModel([]byte("kind: xgboost\n"))
	assert.Error(t, err)
}

func TestLoadModel_FallsBackToSecondPath(t *testing.T) {
	dir := t.TempDir()
	fallback := filepath.Join(dir, "legacy.yaml")
	require.NoError(t, os.WriteFile(fallback, []byte("kind: linear\nintercept: 7\n"), 0o600))

	m, err := LoadModel(config.ModelConfig{
		Path:         filepath.Join(dir, "missing.yaml"),
		FallbackPath: fallback,
	}, nil)
	require.NoError(t, err)
	got, err := m.Predict(context.Background(), models.FeatureVector{})
	require.NoError(t, err)
	assert.Equal(t, 7.0, got)
}

func TestLoadModel_AllPathsFail(t *testing.T) {
	dir := t.TempDir()
	m, err := LoadModel(config.ModelConfig{
		Path:         filepath.Join(dir, "a.yaml"),
		FallbackPath: filepath.Join(dir, "b.yaml"),
	}, nil)
	assert.Error(t, err)
	assert.Nil(t, m)
}

func TestHTTPModel_Predict(t *testing.T) {
	var got predictReq
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/predict", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"prediction": 33.4}`))
	}))
	defer srv.Close()

	m, err := LoadModel(config.ModelConfig{URL: srv.URL, Timeout: time.Second}, nil)
	require.NoError(t, err)

	var fv models.FeatureVector
	fv[models.FeatLag24] = 12
	v, err := m.Predict(context.Background(), fv)
	require.NoError(t, err)
	assert.Equal(t, 33.4, v)
	assert.Equal(t, models.FeatureNames[:], got.Columns)
	assert.Len(t, got.Values, models.NumFeatures)
	assert.Equal(t, 12.0, got.Features["lag24"])
}

func TestHTTPModel_RetriesThenFails(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	m := NewHTTPModel(srv.URL, time.Second, 3)
	_, err := m.Predict(context.Background(), models.FeatureVector{})
	assert.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPModel_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad columns", http.StatusBadRequest)
	}))
	defer srv.Close()

	m := NewHTTPModel(srv.URL, time.Second, 3)
	_, err := m.Predict(context.Background(), models.FeatureVector{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Equal(t, int32(1), calls.Load())
}

func TestShippedModelFiles(t *testing.T) {
	var fv models.FeatureVector
	fv[models.FeatLag1] = 45
	fv[models.FeatPeakHour] = 1
	fv[models.FeatRolling24h] = 35

	forest, err := LoadModelFile("../../../models/patient_forecast_legacy.yaml")
	require.NoError(t, err)
	got, err := forest.Predict(context.Background(), fv)
	require.NoError(t, err)
	assert.Equal(t, 37.5, got)

	linear, err := LoadModelFile("../../../models/patient_forecast.yaml")
	require.NoError(t, err)
	got, err = linear.Predict(context.Background(), fv)
	require.NoError(t, err)
	// 1.5 + 0.45*45 + 0.10*35 + 2.0
	assert.InDelta(t, 27.25, got, 1e-9)
}
