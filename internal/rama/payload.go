package rama

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FlexString decodes a JSON string or number into a string. Upstream ids
// (idProceso, idRegActuacion) arrive as numbers in some responses and as
// strings in others.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("value is neither string nor number: %s", b)
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }

// ProcessSummary is one row of a search response.
type ProcessSummary struct {
	IDProceso         FlexString `json:"idProceso"`
	Numero            string     `json:"numero"`
	LlaveProceso      string     `json:"llaveProceso"`
	Despacho          string     `json:"despacho"`
	Departamento      string     `json:"departamento"`
	SujetosProcesales string     `json:"sujetosProcesales"`
	FechaProceso      string     `json:"fechaProceso"`
	FechaUltimaAct    string     `json:"fechaUltimaActuacion"`
	Demandante        string     `json:"demandante"`
	Demandado         string     `json:"demandado"`
	EsPrivado         bool       `json:"esPrivado"`
}

// Detail is the raw detail record for one process. Field names mirror the
// upstream schema; several attributes appear under more than one name
// depending on the endpoint that produced the record, so both variants are
// kept and reconciled by the normalization layer.
type Detail struct {
	IDProceso           FlexString `json:"idProceso"`
	Numero              string     `json:"numero"`
	LlaveProceso        string     `json:"llaveProceso"`
	Despacho            string     `json:"despacho"`
	Ponente             string     `json:"ponente"`
	SujetosProcesales   string     `json:"sujetosProcesales"`
	FechaProceso        string     `json:"fechaProceso"`
	FechaRadicacion     string     `json:"fechaRadicacion"`
	TipoProceso         string     `json:"tipoProceso"`
	ClaseProceso        string     `json:"claseProceso"`
	Ubicacion           string     `json:"ubicacion"`
	UbicacionExpediente string     `json:"ubicacionExpediente"`
	Demandante          string     `json:"demandante"`
	Demandado           string     `json:"demandado"`
}

// RawAction is one upstream action record. All date fields are free-form
// strings and are stored without parsing.
type RawAction struct {
	IDRegActuacion       FlexString `json:"idRegActuacion"`
	FechaActuacion       string     `json:"fechaActuacion"`
	Actuacion            string     `json:"actuacion"`
	Anotacion            string     `json:"anotacion"`
	FechaIniciaTermino   string     `json:"fechaIniciaTermino"`
	FechaFinalizaTermino string     `json:"fechaFinalizaTermino"`
	FechaRegistro        string     `json:"fechaRegistro"`
	ConDocumentos        bool       `json:"conDocumentos"`
}

// Document is metadata for one document attached to an action.
type Document struct {
	IDRegDocumento FlexString `json:"idRegDocumento"`
	Nombre         string     `json:"nombre"`
	Descripcion    string     `json:"descripcion"`
	FechaDocumento string     `json:"fechaDocumento"`
}

// Shape tags the recognized layout of an actions payload.
type Shape int

const (
	// ShapeBare is a top-level JSON array of actions.
	ShapeBare Shape = iota
	// ShapeWrapped is an object carrying the array under a known key.
	ShapeWrapped
	// ShapeUnrecognized is anything else; it yields zero actions.
	ShapeUnrecognized
)

func (s Shape) String() string {
	switch s {
	case ShapeBare:
		return "bare"
	case ShapeWrapped:
		return "wrapped"
	default:
		return "unrecognized"
	}
}

// Keys under which wrapped responses have been observed to carry the list.
var actionListKeys = []string{"actuaciones", "listaActuaciones"}

// ActionsPayload is the normalized result of decoding an actions response.
type ActionsPayload struct {
	Shape Shape
	Items []RawAction
	// Raw holds the original payload when the shape was unrecognized, for
	// diagnostics.
	Raw []byte
}

// DecodeActions normalizes an actions response body. It never fails: an
// unintelligible payload decodes to ShapeUnrecognized with zero items, which
// callers treat as "no actions" rather than a hard error.
func DecodeActions(data []byte) ActionsPayload {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return ActionsPayload{Shape: ShapeUnrecognized, Raw: data}
	}

	switch trimmed[0] {
	case '[':
		var items []RawAction
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return ActionsPayload{Shape: ShapeUnrecognized, Raw: data}
		}
		return ActionsPayload{Shape: ShapeBare, Items: items}

	case '{':
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return ActionsPayload{Shape: ShapeUnrecognized, Raw: data}
		}
		for _, key := range actionListKeys {
			raw, ok := wrapper[key]
			if !ok {
				continue
			}
			var items []RawAction
			if err := json.Unmarshal(raw, &items); err != nil {
				continue
			}
			return ActionsPayload{Shape: ShapeWrapped, Items: items}
		}
	}
	return ActionsPayload{Shape: ShapeUnrecognized, Raw: data}
}

// DecodeDetail normalizes a detail response body. Accepted shapes: a single
// record, a one-element array, or a search-style wrapper with a "procesos"
// array. Anything else (including an empty body or a record without an
// idProceso) is ErrUnavailable.
func DecodeDetail(data []byte) (*Detail, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, fmt.Errorf("%w: empty detail payload", ErrUnavailable)
	}

	switch trimmed[0] {
	case '[':
		var list []Detail
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("%w: malformed detail list: %v", ErrUnavailable, err)
		}
		if len(list) == 0 {
			return nil, fmt.Errorf("%w: empty detail list", ErrUnavailable)
		}
		return requireDetailID(&list[0])

	case '{':
		var wrapped struct {
			Procesos []Detail `json:"procesos"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err == nil && len(wrapped.Procesos) > 0 {
			return requireDetailID(&wrapped.Procesos[0])
		}
		var d Detail
		if err := json.Unmarshal(trimmed, &d); err != nil {
			return nil, fmt.Errorf("%w: malformed detail object: %v", ErrUnavailable, err)
		}
		return requireDetailID(&d)
	}
	return nil, fmt.Errorf("%w: unexpected detail payload", ErrUnavailable)
}

// requireDetailID rejects records without an idProceso. The API answers
// 200 with a message object for unknown processes; treating that as a valid
// empty detail would persist a hollow process that then blocks re-ingestion.
func requireDetailID(d *Detail) (*Detail, error) {
	if d.IDProceso == "" {
		return nil, fmt.Errorf("%w: detail payload has no idProceso", ErrUnavailable)
	}
	return d, nil
}

func decodeSearch(data []byte) ([]ProcessSummary, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty search payload", ErrUnavailable)
	}
	if trimmed[0] == '[' {
		var list []ProcessSummary
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("%w: malformed search list: %v", ErrUnavailable, err)
		}
		return list, nil
	}
	var wrapped struct {
		Procesos []ProcessSummary `json:"procesos"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, fmt.Errorf("%w: malformed search payload: %v", ErrUnavailable, err)
	}
	return wrapped.Procesos, nil
}

func decodeDocuments(data []byte) ([]Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty documents payload", ErrUnavailable)
	}
	var docs []Document
	if err := json.Unmarshal(trimmed, &docs); err != nil {
		return nil, fmt.Errorf("%w: malformed documents payload: %v", ErrUnavailable, err)
	}
	return docs, nil
}
