package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cobrosmart/internal/collection"
	"cobrosmart/internal/config"
	"cobrosmart/internal/store"
)

type importRequest struct {
	Rows []collection.ImportRow `json:"rows"`
}

type importRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type importResponse struct {
	Inserted int              `json:"inserted"`
	Updated  int              `json:"updated"`
	Rejected int              `json:"rejected"`
	Errors   []importRowError `json:"errors"`
}

const maxImportErrors = 10

// HandleImport bulk-loads debtor rows: rows with valid data are matched to
// existing debtors by phone and updated, the rest inserted. The priority
// snapshot is recomputed through the aggregator + scorer for every write.
func HandleImport(cfg *config.Config, ds store.Datastore) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, "POST")
			return
		}

		var body importRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json", "Body must be JSON: { rows: [...] }")
			return
		}
		if body.Rows == nil {
			writeError(w, http.StatusBadRequest, "invalid_payload", "Body must be JSON: { rows: [...] }")
			return
		}

		resp := importResponse{Errors: []importRowError{}}

		type validRow struct {
			rowNumber int
			data      collection.NormalizedRow
		}
		var valid []validRow
		for i, row := range body.Rows {
			normalized, err := collection.NormalizeImportRow(row)
			if err != nil {
				resp.Rejected++
				if len(resp.Errors) < maxImportErrors {
					resp.Errors = append(resp.Errors, importRowError{Row: i + 1, Message: err.Error()})
				}
				continue
			}
			valid = append(valid, validRow{rowNumber: i + 1, data: normalized})
		}

		ctx := r.Context()

		seen := make(map[string]bool)
		var phones []string
		for _, row := range valid {
			if !seen[row.data.Phone] {
				seen[row.data.Phone] = true
				phones = append(phones, row.data.Phone)
			}
		}

		existingByPhone := make(map[string]store.Debtor)
		if len(phones) > 0 {
			existing, err := ds.FindDebtorsByPhones(ctx, cfg.BusinessID, phones)
			if err != nil {
				handleError(w, err)
				return
			}
			for _, d := range existing {
				if _, ok := existingByPhone[d.Phone]; !ok {
					existingByPhone[d.Phone] = d
				}
			}
		}

		for _, row := range valid {
			if existing, ok := existingByPhone[row.data.Phone]; ok {
				existing.Name = row.data.Name
				existing.AmountARS = row.data.AmountARS
				existing.DaysOverdue = row.data.DaysOverdue
				existing.Note = row.data.Note

				priority, err := collection.RecalculatePriority(ctx, ds, existing)
				if err != nil {
					handleError(w, err)
					return
				}
				existing.PriorityScore = priority.Score
				existing.PriorityReason = priority.Reason

				updated, err := ds.UpdateDebtor(ctx, existing)
				if err != nil {
					resp.Rejected++
					if len(resp.Errors) < maxImportErrors {
						resp.Errors = append(resp.Errors, importRowError{
							Row: row.rowNumber, Message: "no se pudo actualizar en base de datos",
						})
					}
					continue
				}
				existingByPhone[row.data.Phone] = updated
				resp.Updated++
				continue
			}

			// New debtor: no events yet, so the scorer sees an empty history.
			priority := collection.CalculatePriority(collection.PriorityInput{
				DaysOverdue: row.data.DaysOverdue,
				AmountARS:   row.data.AmountARS,
				Note:        row.data.Note,
			}, collection.HistorySummary{})

			inserted, err := ds.InsertDebtor(ctx, store.Debtor{
				ID:             uuid.NewString(),
				BusinessID:     cfg.BusinessID,
				Name:           row.data.Name,
				Phone:          row.data.Phone,
				AmountARS:      row.data.AmountARS,
				DaysOverdue:    row.data.DaysOverdue,
				Note:           row.data.Note,
				LastStatus:     "new",
				PriorityScore:  priority.Score,
				PriorityReason: priority.Reason,
			})
			if err != nil {
				resp.Rejected++
				if len(resp.Errors) < maxImportErrors {
					resp.Errors = append(resp.Errors, importRowError{
						Row: row.rowNumber, Message: "no se pudo insertar en base de datos",
					})
				}
				continue
			}
			existingByPhone[inserted.Phone] = inserted
			resp.Inserted++
		}

		zap.L().Info("import completed",
			zap.Int("inserted", resp.Inserted),
			zap.Int("updated", resp.Updated),
			zap.Int("rejected", resp.Rejected),
			zap.Int("total", len(body.Rows)),
		)
		writeJSON(w, http.StatusOK, resp)
	})
}
