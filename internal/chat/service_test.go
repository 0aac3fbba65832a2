package chat_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/frahmantamala/request-routing/internal"
	"github.com/frahmantamala/request-routing/internal/chat"
	chatPostgres "github.com/frahmantamala/request-routing/internal/chat/postgres"
	chatDatamodel "github.com/frahmantamala/request-routing/internal/core/datamodel/chat"
	requestDatamodel "github.com/frahmantamala/request-routing/internal/core/datamodel/request"
	requestPostgres "github.com/frahmantamala/request-routing/internal/request/postgres"
	"github.com/frahmantamala/request-routing/internal/transport"
)

var _ = Describe("Chat", func() {
	var (
		ctx     context.Context
		db      *gorm.DB
		service *chat.Service
		router  chi.Router
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&requestDatamodel.Request{}, &chatDatamodel.Message{})).To(Succeed())
		Expect(db.Create(&requestDatamodel.Request{
			RequestID: "REQ-2025-001", Title: "t", Description: "d",
			SenderDepartment: "الادارة المالية", TargetDepartment: "ادارة التقنية",
			Status: "new", Version: 1, CreatedAt: time.Now(),
		}).Error).To(Succeed())

		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = chat.NewService(chatPostgres.NewChatRepository(db), requestPostgres.NewRequestRepository(db), nil, slogger)

		handler := chat.NewHandler(transport.NewBaseHandler(slogger), service)
		router = chi.NewRouter()
		router.Post("/api/chat_send", handler.Send)
		router.Get("/api/chat_get/{requestId}", handler.Get)
	})

	It("keeps messages in append order per request", func() {
		for _, text := range []string{"مرحبا", "تم الاستلام", "شكرا"} {
			_, err := service.Send(ctx, chat.SendMessageDTO{RequestID: "REQ-2025-001", Sender: "سالم", Message: text})
			Expect(err).NotTo(HaveOccurred())
		}

		history, err := service.History(ctx, "REQ-2025-001")
		Expect(err).NotTo(HaveOccurred())
		Expect(history).To(HaveLen(3))
		Expect(history[0].Body).To(Equal("مرحبا"))
		Expect(history[2].Body).To(Equal("شكرا"))
	})

	It("requires request id, sender and message", func() {
		_, err := service.Send(ctx, chat.SendMessageDTO{RequestID: "REQ-2025-001", Sender: "سالم"})
		Expect(err).To(MatchError(internal.ErrMissingFields))
	})

	It("rejects messages for unknown requests", func() {
		_, err := service.Send(ctx, chat.SendMessageDTO{RequestID: "REQ-2025-404", Sender: "a", Message: "b"})
		Expect(err).To(MatchError(internal.ErrRequestNotFound))
	})

	It("reduces attachment references to a base name", func() {
		msg, err := service.Send(ctx, chat.SendMessageDTO{RequestID: "REQ-2025-001", Sender: "a", Message: "b", File: "../../x/REQ-2025-001_a.pdf"})
		Expect(err).NotTo(HaveOccurred())
		Expect(msg.FileName).To(Equal("REQ-2025-001_a.pdf"))
	})

	It("serves the conversation over HTTP", func() {
		req := httptest.NewRequest(http.MethodPost, "/api/chat_send",
			strings.NewReader(`{"request_id":"REQ-2025-001","sender":"سالم","department":"IT","message":"hello"}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		Expect(w.Code).To(Equal(http.StatusOK))

		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/chat_get/REQ-2025-001", nil))
		Expect(w.Code).To(Equal(http.StatusOK))

		var messages []chat.MessageResponse
		Expect(json.NewDecoder(w.Body).Decode(&messages)).To(Succeed())
		Expect(messages).To(HaveLen(1))
		Expect(messages[0].Sender).To(Equal("سالم"))
		Expect(messages[0].Message).To(Equal("hello"))
	})

	It("answers 400 when required fields are missing", func() {
		req := httptest.NewRequest(http.MethodPost, "/api/chat_send", strings.NewReader(`{"request_id":"REQ-2025-001"}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})
})
