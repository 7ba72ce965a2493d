package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"boatbooking/internal/domain"
	"boatbooking/internal/domain/models"
	"boatbooking/internal/services"
	"boatbooking/internal/utils"

	"github.com/gin-gonic/gin"
)

// POST /pay (multipart form with id_file)
func (h Handler) Pay(c *gin.Context) {
	persons, err := formInt(c, "persons", -1)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	children, err := formInt(c, "children_under3", 0)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	doc, err := h.readIDDocument(c)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	in := services.InitiateInput{
		Date:           c.PostForm("date"),
		Time:           c.PostForm("time"),
		Route:          c.PostForm("route"),
		Persons:        persons,
		ChildrenUnder3: children,
		Name:           c.PostForm("name"),
		Phone:          c.PostForm("phone"),
		Email:          c.PostForm("email"),
		Address:        c.PostForm("address"),
		IDType:         c.PostForm("id_type"),
		IDDocument:     doc,
	}
	res, err := h.Bookings.Initiate(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"booking_token": res.Token,
		"token":         res.Token,
		"order_id":      res.OrderID,
		"amount":        res.Amount,
		"amount_major":  utils.FormatMinor(res.Amount),
		"currency":      res.Currency,
		"key_id":        res.KeyID,
		"test_mode":     res.TestMode,
		"name":          res.Name,
		"email":         res.Email,
		"phone":         res.Phone,
		"persons":       res.Persons,
	})
}

type verifyPaymentRequest struct {
	BookingToken      string `json:"booking_token"`
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

// POST /verify_payment
func (h Handler) VerifyPayment(c *gin.Context) {
	var req verifyPaymentRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	res, err := h.Bookings.Verify(c.Request.Context(), services.VerifyInput{
		Token:     req.BookingToken,
		OrderID:   req.RazorpayOrderID,
		PaymentID: req.RazorpayPaymentID,
		Signature: req.RazorpaySignature,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"booking_id": res.BookingID,
		"test_mode":  res.TestMode,
	})
}

// GET /success?bid=
func (h Handler) Success(c *gin.Context) {
	bid := strings.TrimSpace(c.Query("bid"))
	if bid == "" {
		respondError(c, http.StatusBadRequest, "validation_error", "bid is required", nil)
		return
	}
	b, err := h.Bookings.GetBooking(c.Request.Context(), bid)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"booking_id": b.BookingID,
		"name":       b.Contact.Name,
		"email":      b.Contact.Email,
		"test_mode":  b.TestMode,
	})
}

// GET /ticket/:booking_id
func (h Handler) Ticket(c *gin.Context) {
	id := strings.TrimSpace(c.Param("booking_id"))
	path, err := h.Bookings.TicketPath(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.FileAttachment(path, id+".pdf")
}

func (h Handler) readIDDocument(c *gin.Context) (models.IDDocument, error) {
	fh, err := c.FormFile("id_file")
	if err != nil {
		return models.IDDocument{}, domain.ValidationError{Field: "id_file", Msg: "identity document is required", Err: err}
	}
	if h.MaxUploadBytes > 0 && fh.Size > h.MaxUploadBytes {
		return models.IDDocument{}, domain.ValidationError{Field: "id_file", Msg: fmt.Sprintf("identity document exceeds %d bytes", h.MaxUploadBytes)}
	}
	f, err := fh.Open()
	if err != nil {
		return models.IDDocument{}, domain.UploadError{Err: err}
	}
	defer f.Close()

	limit := h.MaxUploadBytes
	if limit <= 0 {
		limit = fh.Size
	}
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return models.IDDocument{}, domain.UploadError{Err: err}
	}
	return models.IDDocument{
		Filename:    filepath.Base(fh.Filename),
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// formInt parses an integer form field; def < 0 makes the field required.
func formInt(c *gin.Context, field string, def int) (int, error) {
	raw := strings.TrimSpace(c.PostForm(field))
	if raw == "" {
		if def < 0 {
			return 0, domain.ValidationError{Field: field, Msg: "is required"}
		}
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.ValidationError{Field: field, Msg: "must be a whole number", Err: err}
	}
	return n, nil
}
