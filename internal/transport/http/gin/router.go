package httpgin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/bookmyseat/bms-go/internal/coupon"
	"github.com/bookmyseat/bms-go/internal/repository"
	postgresrepo "github.com/bookmyseat/bms-go/internal/repository/postgres"
	redisrepo "github.com/bookmyseat/bms-go/internal/repository/redis"
	"github.com/bookmyseat/bms-go/internal/selection"
	"github.com/bookmyseat/bms-go/internal/service"
	"github.com/bookmyseat/bms-go/internal/service/admin"
	"github.com/bookmyseat/bms-go/internal/service/bookings"
	"github.com/bookmyseat/bms-go/internal/service/coupons"
	"github.com/bookmyseat/bms-go/internal/service/query"
	"github.com/bookmyseat/bms-go/internal/service/reservation"
)

func NewRouter(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
	jwtSecret string,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public API
	r.GET("/api/buses", handleSearchBuses(svcs))
	r.GET("/api/buses/:busId", handleGetBus(svcs))
	r.GET("/api/coupons", handleListCoupons(svcs))

	// Authenticated API
	auth := r.Group("/api", RequireAuth(jwtSecret))
	{
		auth.GET("/buses/:busId/seats", handleSeatMap(svcs))
		auth.POST("/buses/:busId/seats/:seatId/toggle", handleToggleSeat(svcs))
		auth.POST("/buses/:busId/hold", handleHold(svcs))
		auth.GET("/buses/:busId/hold", handleGetSelection(svcs))
		auth.POST("/buses/:busId/book", handleBook(svcs, idem))

		auth.POST("/coupons/apply", handleApplyCoupon(svcs))

		auth.GET("/buses/me/bookings", handleListMyBookings(svcs))
		auth.GET("/buses/bookings/:id", handleGetBooking(svcs))
		auth.POST("/buses/bookings/:id/cancel", handleCancelBooking(svcs))
		auth.GET("/buses/bookings/:id/ticket", handleDownloadTicket(svcs))
	}

	// Admin API
	adminAPI := r.Group("/api", RequireAuth(jwtSecret), RequireAdmin())
	{
		adminAPI.POST("/buses", handleCreateBus(svcs))
		adminAPI.PUT("/buses/:busId", handleUpdateBus(svcs))
		adminAPI.DELETE("/buses/:busId", handleDeleteBus(svcs))
		adminAPI.PUT("/buses/:busId/delay", handleSetDelay(svcs))
		adminAPI.DELETE("/buses/:busId/delay", handleClearDelay(svcs))

		adminAPI.GET("/buses/admin/delays", handleDelayHistory(svcs))
		adminAPI.GET("/buses/admin/bookings", handleListAllBookings(svcs))
		adminAPI.DELETE("/buses/admin/bookings/clear", handleClearBookings(svcs))

		adminAPI.POST("/coupons", handleCreateCoupon(svcs))
		adminAPI.PUT("/coupons/:id", handleUpdateCoupon(svcs))
		adminAPI.DELETE("/coupons/:id", handleDeleteCoupon(svcs))
	}

	return r
}

// --- Handlers with Swagger annotations ---

// @Summary  Search buses
// @Param    from     query  string  false "origin city"
// @Param    to       query  string  false "destination city"
// @Param    date     query  string  false "travel date (YYYY-MM-DD)"
// @Param    type     query  string  false "bus type"
// @Param    minFare  query  number  false "minimum fare"
// @Param    maxFare  query  number  false "maximum fare"
// @Success  200  {array}  domain.Bus
// @Router   /api/buses [get]
func handleSearchBuses(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		f := postgresrepo.SearchFilter{
			From:    c.Query("from"),
			To:      c.Query("to"),
			Type:    c.Query("type"),
			MinFare: parseFloatDefault(c.Query("minFare"), 0),
			MaxFare: parseFloatDefault(c.Query("maxFare"), 0),
		}

		if d := c.Query("date"); d != "" {
			t, err := time.Parse("2006-01-02", d)
			if err != nil {
				badRequest(c, "invalid date (YYYY-MM-DD)")
				return
			}
			f.Date = &t
		}

		buses, err := svcs.Query.SearchBuses(c.Request.Context(), f)
		if err != nil {
			respondErr(c, err)
			return
		}
		// ETag + Cache-Control 30s
		writeJSONWithCache(c, http.StatusOK, buses, "public, max-age=30", true)
	}
}

// @Summary  Get bus
// @Param    busId  path  string  true  "Bus ID"
// @Success  200  {object}  domain.Bus
// @Failure  404  {object}  ErrorResponse
// @Router   /api/buses/{busId} [get]
func handleGetBus(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		bus, err := svcs.Query.GetBus(c.Request.Context(), c.Param("busId"))
		if err != nil {
			respondErr(c, err)
			return
		}
		// ETag + Cache-Control 15s
		writeJSONWithCache(c, http.StatusOK, bus, "public, max-age=15", true)
	}
}

// @Summary  Get seat map
// @Param    busId  path  string  true  "Bus ID"
// @Success  200  {array}  seatmap.Row
// @Failure  404  {object}  ErrorResponse
// @Security BearerAuth
// @Router   /api/buses/{busId}/seats [get]
func handleSeatMap(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := currentUser(c)

		rows, err := svcs.Query.SeatMap(c.Request.Context(), user, c.Param("busId"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}

// @Summary  Toggle a seat in the current selection
// @Param    busId   path  string  true  "Bus ID"
// @Param    seatId  path  string  true  "Seat ID"
// @Success  200  {object}  ToggleResponse
// @Failure  400  {object}  ErrorResponse "selection limit reached"
// @Security BearerAuth
// @Router   /api/buses/{busId}/seats/{seatId}/toggle [post]
func handleToggleSeat(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := currentUser(c)

		seats, err := svcs.Reservation.Toggle(
			c.Request.Context(),
			user,
			c.Param("busId"),
			c.Param("seatId"),
		)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, ToggleResponse{Seats: seats})
	}
}

// @Summary  Hold a full seat selection
// @Param    busId  path  string       true  "Bus ID"
// @Param    req    body  HoldRequest  true  "payload"
// @Success  200  {object}  HoldResponse
// @Failure  409  {object}  ErrorResponse "seats held by another user"
// @Failure  429  {object}  ErrorResponse "rate limited"
// @Security BearerAuth
// @Router   /api/buses/{busId}/hold [post]
func handleHold(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := currentUser(c)

		var req HoldRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		rlKey := "ip:" + c.ClientIP()

		expiresAt, err := svcs.Reservation.Hold(
			c.Request.Context(),
			user,
			c.Param("busId"),
			req.Seats,
			rlKey,
		)
		if err != nil {
			if isRateLimitedErr(err) {
				c.Header("Retry-After", "60")
				c.JSON(
					http.StatusTooManyRequests,
					ErrorResponse{Error: err.Error()},
				)
				return
			}
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, HoldResponse{Seats: req.Seats, ExpiresAt: expiresAt})
	}
}

// @Summary  Get current selection and remaining hold time
// @Param    busId  path  string  true  "Bus ID"
// @Success  200  {object}  SelectionResponse
// @Security BearerAuth
// @Router   /api/buses/{busId}/hold [get]
func handleGetSelection(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := currentUser(c)

		seats, ttl, err := svcs.Reservation.Selection(
			c.Request.Context(),
			user,
			c.Param("busId"),
		)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, SelectionResponse{
			Seats:      seats,
			TTLSeconds: int64(ttl / time.Second),
		})
	}
}

// @Summary  Book seats (idempotent)
// @Param    busId  path  string       true  "Bus ID"
// @Param    req    body  BookRequest  true  "payload"
// @Header   201 {string} Idempotency-Key "echo"
// @Success  201 {object} domain.Booking
// @Failure  400 {object} ErrorResponse "invalid coupon / below minimum"
// @Failure  409 {object} ErrorResponse "seats taken / idem in progress"
// @Security BearerAuth
// @Router   /api/buses/{busId}/book [post]
func handleBook(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := currentUser(c)
		busID := c.Param("busId")

		var req BookRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisrepo.KeyIdemBooking(busID, idemKey)

			if payload, ok, _ := idem.GetResult(
				c.Request.Context(),
				idemStorageKey,
			); ok {
				c.Header("Idempotency-Key", idemKey)
				c.Data(
					http.StatusCreated,
					"application/json; charset=utf-8",
					[]byte(payload),
				)
				return
			}

			locked, err := idem.AcquireLock(
				c.Request.Context(),
				idemStorageKey,
				60*time.Second,
			)
			if err != nil {
				respondErr(c, err)
				return
			}
			if !locked {
				if payload, ok, _ := idem.GetResult(
					c.Request.Context(),
					idemStorageKey,
				); ok {
					c.Header("Idempotency-Key", idemKey)
					c.Data(
						http.StatusCreated,
						"application/json; charset=utf-8",
						[]byte(payload),
					)
					return
				}
				c.Header("Retry-After", "1")
				c.JSON(
					http.StatusConflict,
					ErrorResponse{Error: "idempotency key in progress"},
				)
				return
			}
		}

		releaseIdem := func() {
			if idemStorageKey != "" && idem != nil {
				_ = idem.Release(c.Request.Context(), idemStorageKey)
			}
		}

		// Amounts are computed server-side from the bus fare and the coupon
		// table; the client never prices its own booking.
		bus, err := svcs.Query.GetBus(c.Request.Context(), busID)
		if err != nil {
			releaseIdem()
			respondErr(c, err)
			return
		}

		totalAmount := bus.Fare * float64(len(req.Seats))

		var discount float64
		if req.CouponCode != "" {
			discount, err = svcs.Coupons.Apply(
				c.Request.Context(),
				req.CouponCode,
				totalAmount,
			)
			if err != nil {
				releaseIdem()
				respondErr(c, err)
				return
			}
		}

		booking, err := svcs.Reservation.Book(
			c.Request.Context(),
			user,
			busID,
			req.Seats,
			totalAmount,
			discount,
			req.PaymentMethod,
		)
		if err != nil {
			releaseIdem()
			respondErr(c, err)
			return
		}

		if idemStorageKey != "" && idem != nil {
			b, _ := json.Marshal(booking)
			_ = idem.SaveResult(c.Request.Context(), idemStorageKey, string(b))
			c.Header("Idempotency-Key", idemKey)
		}

		c.JSON(http.StatusCreated, booking)
	}
}

// @Summary  Apply a coupon to an amount
// @Param    req body  ApplyCouponRequest true "payload"
// @Success  200 {object} ApplyCouponResponse
// @Failure  400 {object} ErrorResponse
// @Security BearerAuth
// @Router   /api/coupons/apply [post]
func handleApplyCoupon(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ApplyCouponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		discount, err := svcs.Coupons.Apply(c.Request.Context(), req.Code, req.Amount)
		if err != nil {
			respondErr(c, err)
			return
		}

		final := req.Amount - discount
		if final < 0 {
			final = 0
		}

		c.JSON(http.StatusOK, ApplyCouponResponse{
			Code:        strings.ToUpper(strings.TrimSpace(req.Code)),
			Discount:    discount,
			FinalAmount: final,
		})
	}
}

// @Summary  List my bookings
// @Success  200 {array} domain.Booking
// @Security BearerAuth
// @Router   /api/buses/me/bookings [get]
func handleListMyBookings(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := currentUser(c)

		list, err := svcs.Bookings.ListMine(c.Request.Context(), user)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// @Summary  Get booking
// @Param    id  path  string  true  "Booking ID (uuid)"
// @Success  200 {object} domain.Booking
// @Failure  404 {object} ErrorResponse
// @Security BearerAuth
// @Router   /api/buses/bookings/{id} [get]
func handleGetBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := currentUser(c)

		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		b, err := svcs.Bookings.Get(c.Request.Context(), user, id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}

// @Summary  Cancel booking with refund
// @Param    id   path  string         true  "Booking ID (uuid)"
// @Param    req  body  CancelRequest  true  "payload"
// @Success  200 {object} domain.Booking
// @Failure  409 {object} ErrorResponse "already cancelled"
// @Security BearerAuth
// @Router   /api/buses/bookings/{id}/cancel [post]
func handleCancelBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := currentUser(c)

		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		var req CancelRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		b, err := svcs.Bookings.Cancel(c.Request.Context(), user, id, req.Reason)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}

// @Summary  Download ticket
// @Param    id      path   string  true  "Booking ID (uuid)"
// @Param    format  query  string  false "html (default) or pdf"
// @Success  200 {file} file
// @Failure  409 {object} ErrorResponse "booking not confirmed"
// @Security BearerAuth
// @Router   /api/buses/bookings/{id}/ticket [get]
func handleDownloadTicket(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := currentUser(c)

		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		var (
			name        string
			data        []byte
			contentType string
			err         error
		)

		if c.Query("format") == "pdf" {
			name, data, err = svcs.Bookings.TicketPDF(c.Request.Context(), user, id)
			contentType = "application/pdf"
		} else {
			name, data, err = svcs.Bookings.TicketHTML(c.Request.Context(), user, id)
			contentType = "text/html; charset=utf-8"
		}
		if err != nil {
			respondErr(c, err)
			return
		}

		c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
		c.Data(http.StatusOK, contentType, data)
	}
}

// @Summary  Create bus
// @Param    req body  BusRequest true "payload"
// @Success  201 {object} domain.Bus
// @Security BearerAuth
// @Router   /api/buses [post]
func handleCreateBus(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		bus, err := req.toDomain()
		if err != nil {
			badRequest(c, "invalid departure/arrival (RFC3339)")
			return
		}

		if err := svcs.Admin.CreateBus(c.Request.Context(), bus); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, bus)
	}
}

// @Summary  Update bus
// @Param    busId  path  string      true  "Bus ID"
// @Param    req    body  BusRequest  true  "payload"
// @Success  200 {object} domain.Bus
// @Security BearerAuth
// @Router   /api/buses/{busId} [put]
func handleUpdateBus(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		bus, err := req.toDomain()
		if err != nil {
			badRequest(c, "invalid departure/arrival (RFC3339)")
			return
		}
		bus.ID = c.Param("busId")

		if err := svcs.Admin.UpdateBus(c.Request.Context(), bus); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, bus)
	}
}

// @Summary  Delete bus
// @Param    busId  path  string  true  "Bus ID"
// @Success  204
// @Security BearerAuth
// @Router   /api/buses/{busId} [delete]
func handleDeleteBus(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svcs.Admin.DeleteBus(c.Request.Context(), c.Param("busId")); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  Set bus delay
// @Param    busId  path  string        true  "Bus ID"
// @Param    req    body  DelayRequest  true  "payload"
// @Success  204
// @Security BearerAuth
// @Router   /api/buses/{busId}/delay [put]
func handleSetDelay(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req DelayRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		err := svcs.Admin.SetDelay(
			c.Request.Context(),
			c.Param("busId"),
			req.Minutes,
			req.Reason,
		)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  Clear bus delay
// @Param    busId  path  string  true  "Bus ID"
// @Success  204
// @Security BearerAuth
// @Router   /api/buses/{busId}/delay [delete]
func handleClearDelay(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svcs.Admin.ClearDelay(c.Request.Context(), c.Param("busId")); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  Delay history
// @Success  200 {array} domain.DelayRecord
// @Security BearerAuth
// @Router   /api/buses/admin/delays [get]
func handleDelayHistory(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		records, err := svcs.Admin.DelayHistory(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, records)
	}
}

// @Summary  List all bookings
// @Success  200 {array} domain.Booking
// @Security BearerAuth
// @Router   /api/buses/admin/bookings [get]
func handleListAllBookings(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svcs.Bookings.ListAll(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// @Summary  Clear all bookings and free every seat
// @Success  204
// @Security BearerAuth
// @Router   /api/buses/admin/bookings/clear [delete]
func handleClearBookings(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svcs.Admin.ClearBookings(c.Request.Context()); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  List coupons
// @Success  200 {array} domain.Coupon
// @Security BearerAuth
// @Router   /api/coupons [get]
func handleListCoupons(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svcs.Coupons.List(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// @Summary  Create coupon
// @Param    req body  CouponRequest true "payload"
// @Success  201 {object} domain.Coupon
// @Security BearerAuth
// @Router   /api/coupons [post]
func handleCreateCoupon(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CouponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		cp, err := req.toDomain()
		if err != nil {
			badRequest(c, "invalid expiresAt (RFC3339)")
			return
		}

		if err := svcs.Coupons.Create(c.Request.Context(), cp); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, cp)
	}
}

// @Summary  Update coupon
// @Param    id   path  int            true  "Coupon ID"
// @Param    req  body  CouponRequest  true  "payload"
// @Success  200 {object} domain.Coupon
// @Security BearerAuth
// @Router   /api/coupons/{id} [put]
func handleUpdateCoupon(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		var req CouponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		cp, err := req.toDomain()
		if err != nil {
			badRequest(c, "invalid expiresAt (RFC3339)")
			return
		}
		cp.ID = id

		if err := svcs.Coupons.Update(c.Request.Context(), cp); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, cp)
	}
}

// @Summary  Delete coupon
// @Param    id  path  int  true  "Coupon ID"
// @Success  204
// @Security BearerAuth
// @Router   /api/coupons/{id} [delete]
func handleDeleteCoupon(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		if err := svcs.Coupons.Delete(c.Request.Context(), id); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// --- Helpers ---

func parseInt64Param(c *gin.Context, name string) (int64, bool) {
	s := c.Param(name)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	v, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return v, true
}

func parseFloatDefault(s string, def float64) float64 {
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return v
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func isRateLimitedErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "rate limited")
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	var (
		capErr     selection.CapacityError
		takenErr   reservation.SeatsTakenError
		invalidErr reservation.InvalidSeatError
		minErr     coupon.MinimumAmountError
	)

	switch {
	// seat selection
	case errors.As(err, &capErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: capErr.Error()})
		return
	case errors.As(err, &takenErr):
		c.JSON(http.StatusConflict, ErrorResponse{Error: takenErr.Error()})
		return
	case errors.As(err, &invalidErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: invalidErr.Error()})
		return
	// coupons
	case errors.As(err, &minErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: minErr.Error()})
		return
	case errors.Is(err, coupon.ErrInvalidCode):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid coupon code"})
		return
	case errors.Is(err, coupons.ErrCouponNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "coupon not found"})
		return
	case errors.Is(err, coupons.ErrDuplicateCode):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "coupon code already exists"})
		return
	// query service
	case errors.Is(err, query.ErrBusNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "bus not found"})
		return
	// reservation service
	case errors.Is(err, reservation.ErrBusNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "bus not found"})
		return
	case errors.Is(err, reservation.ErrNoSeatsSelected):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "no seats selected"})
		return
	case errors.Is(err, reservation.ErrBusFull):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "bus is full"})
		return
	case errors.Is(err, reservation.ErrSeatsHeld),
		errors.Is(err, repository.ErrSeatsHeld):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "seats held by another user"})
		return
	// bookings service
	case errors.Is(err, bookings.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "booking not found"})
		return
	case errors.Is(err, bookings.ErrNotOwner):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "booking belongs to another user"})
		return
	case errors.Is(err, bookings.ErrAlreadyCancelled):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "booking is already cancelled"})
		return
	case errors.Is(err, bookings.ErrNotConfirmed):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "booking is not confirmed"})
		return
	case errors.Is(err, bookings.ErrReasonTooShort):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "cancellation reason must be at least 5 characters"})
		return
	// admin service
	case errors.Is(err, admin.ErrBusNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "bus not found"})
		return
	case errors.Is(err, admin.ErrDuplicateBus):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "bus id already exists"})
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}
