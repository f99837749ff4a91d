package api

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ArcadiiFlorean/Consultant-host-version/internal/slot"
)

func listSlotsHandler(svc SlotService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slots, err := svc.ListAvailable(r.Context())
		if err != nil {
			handleSlotError(w, r, logger, err, "failed to load available slots")
			return
		}

		records := make([]SlotRecord, 0, len(slots))
		for _, s := range slots {
			records = append(records, SlotRecord{
				SlotDate:         s.DateString(),
				SlotTime:         s.TimeString(),
				DatetimeCombined: s.Combined(),
			})
		}

		writeJSON(w, http.StatusOK, SlotsResponse{
			Success: true,
			Slots:   records,
			Count:   len(records),
		})
	}
}

func checkSlotHandler(svc SlotService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		date := q.Get("date")
		timeOfDay := q.Get("time")

		available, err := svc.CheckAvailability(r.Context(), date, timeOfDay)
		if err != nil {
			handleSlotError(w, r, logger, err, "failed to check slot availability")
			return
		}

		writeJSON(w, http.StatusOK, AvailabilityResponse{
			Success:   true,
			Available: available,
			Date:      date,
			Time:      timeOfDay,
		})
	}
}

func handleSlotError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error, message string) {
	var vErr *slot.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, vErr.Error())
	default:
		logger.Error(message, zap.Error(err), zap.String("request_id", GetRequestID(r.Context())))
		writeError(w, http.StatusInternalServerError, message)
	}
}
