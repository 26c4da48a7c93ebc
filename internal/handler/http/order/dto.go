package order

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"commerce-bridge/internal/handler/http/pathutil"
	"commerce-bridge/internal/handler/http/respond"
	orderUC "commerce-bridge/internal/usecase/order"
)

type confirmRequest struct {
	// OrderDate optionally forces the confirmation date. Accepted
	// layouts: RFC3339, "2006-01-02 15:04:05", "2006-01-02".
	OrderDate string `json:"order_date"`
}

type creditNoteRequest struct {
	Reason string `json:"reason"`
}

type paymentRequest struct {
	JournalID  int64  `json:"journal_id"`
	PaymentRef string `json:"payment_ref"`
}

// recordID parses the {id} path value. A malformed ID is a transport
// error, not a business failure, so it gets a 400 instead of a Result.
func recordID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := pathutil.ParseID(r.PathValue("id"))
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return 0, false
	}
	return id, true
}

// decodeBody decodes an optional JSON request body into dst. An empty
// body leaves dst at its zero value.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return false
	}
	return true
}

func writeResult(w http.ResponseWriter, operation string, res orderUC.Result) {
	recordRPCResult(operation, res.Success)
	respond.JSON(w, http.StatusOK, res)
}
