package rama

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, nil)
}

func TestClientSendsBrowserUserAgent(t *testing.T) {
	var gotUA string
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(`{"idProceso": 1}`))
	})

	_, err := client.FetchDetail(context.Background(), "1")
	require.NoError(t, err)
	assert.Contains(t, gotUA, "Mozilla/5.0")
}

func TestSearchByNameQueryParams(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"procesos": []}`))
	})

	_, err := client.SearchByName(context.Background(), "BANCOLOMBIA", SearchOptions{
		PersonType: "nat",
		OnlyActive: true,
		CourtCode:  "05001",
		Page:       3,
	})
	require.NoError(t, err)

	assert.Equal(t, "/Procesos/Consulta/NombreRazonSocial", gotPath)
	assert.Equal(t, []string{"BANCOLOMBIA"}, gotQuery["nombre"])
	assert.Equal(t, []string{"nat"}, gotQuery["tipoPersona"])
	assert.Equal(t, []string{"true"}, gotQuery["SoloActivos"])
	assert.Equal(t, []string{"3"}, gotQuery["pagina"])
	assert.Equal(t, []string{"05001"}, gotQuery["codificacionDespacho"])
}

func TestSearchDefaults(t *testing.T) {
	var gotQuery map[string][]string
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`[]`))
	})

	_, err := client.SearchByName(context.Background(), "ACME", SearchOptions{})
	require.NoError(t, err)

	// Person type defaults to legal entity, page is clamped to 1.
	assert.Equal(t, []string{"jur"}, gotQuery["tipoPersona"])
	assert.Equal(t, []string{"1"}, gotQuery["pagina"])
	assert.NotContains(t, gotQuery, "codificacionDespacho")
}

func TestSearchByRegistrationNumber(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"procesos": [{"idProceso": 198167821}]}`))
	})

	results, err := client.SearchByRegistrationNumber(context.Background(), "05001310300520210012300", SearchOptions{})
	require.NoError(t, err)

	assert.Equal(t, "/Procesos/Consulta/NumeroRadicacion", gotPath)
	assert.Equal(t, []string{"05001310300520210012300"}, gotQuery["numero"])
	require.Len(t, results, 1)
	assert.Equal(t, "198167821", results[0].IDProceso.String())
}

func TestFetchDetailErrorStatus(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broken", http.StatusBadGateway)
	})

	_, err := client.FetchDetail(context.Background(), "42")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestFetchActionsToleratesWeirdPayload(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"mensaje": "sin resultados"}`))
	})

	payload, err := client.FetchActions(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, ShapeUnrecognized, payload.Shape)
	assert.Empty(t, payload.Items)
}

func TestFetchActionDocuments(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Proceso/DocumentosActuacion/555", r.URL.Path)
		w.Write([]byte(`[{"idRegDocumento": 9, "nombre": "auto.pdf"}]`))
	})

	docs, err := client.FetchActionDocuments(context.Background(), "555")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "auto.pdf", docs[0].Nombre)
}

func TestClientUnreachableHost(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 500*time.Millisecond, nil)

	_, err := client.FetchDetail(context.Background(), "1")
	assert.ErrorIs(t, err, ErrUnavailable)
}
