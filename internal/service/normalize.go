package service

import (
	"time"

	"github.com/dfrestrepo/ramatrack/internal/models"
	"github.com/dfrestrepo/ramatrack/internal/rama"
)

// normalizeDetail maps a raw detail record onto a process candidate. The
// upstream schema is not stable across processes, so several attributes are
// resolved through field-name fallback chains; missing fields stay absent.
func normalizeDetail(externalID string, d *rama.Detail, searchTerm string) models.ProcessInput {
	in := models.ProcessInput{
		ExternalID: externalID,
		QueriedAt:  time.Now().UTC(),
	}
	if id := d.IDProceso.String(); id != "" {
		in.ExternalID = id
	}

	in.RegistrationNumber = firstNonEmpty(d.Numero, d.LlaveProceso)
	in.Court = models.StringPtr(d.Despacho)
	in.ReportingJudge = models.StringPtr(d.Ponente)
	in.Parties = models.StringPtr(d.SujetosProcesales)
	in.FilingDate = firstNonEmpty(d.FechaProceso, d.FechaRadicacion)
	in.ProcessType = models.StringPtr(d.TipoProceso)
	in.ProcessClass = models.StringPtr(d.ClaseProceso)
	in.FileLocation = firstNonEmpty(d.Ubicacion, d.UbicacionExpediente)
	in.Plaintiff = models.StringPtr(d.Demandante)
	in.Defendant = models.StringPtr(d.Demandado)
	in.SearchTermUsed = models.StringPtr(searchTerm)
	return in
}

// normalizeAction maps a raw action record onto an action candidate. The
// caller binds it to the owning process and fills the enrichment fields.
func normalizeAction(raw rama.RawAction) models.ActionInput {
	return models.ActionInput{
		ExternalActionID: models.StringPtr(raw.IDRegActuacion.String()),
		ActionDate:       models.StringPtr(raw.FechaActuacion),
		ActionType:       models.StringPtr(raw.Actuacion),
		Annotation:       models.StringPtr(raw.Anotacion),
		TermStartDate:    models.StringPtr(raw.FechaIniciaTermino),
		TermEndDate:      models.StringPtr(raw.FechaFinalizaTermino),
		RegisteredDate:   models.StringPtr(raw.FechaRegistro),
		HasDocuments:     raw.ConDocumentos,
	}
}

func firstNonEmpty(values ...string) *string {
	for _, v := range values {
		if v != "" {
			return &v
		}
	}
	return nil
}
