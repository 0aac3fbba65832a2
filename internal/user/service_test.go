package user_test

import (
	"context"
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/frahmantamala/request-routing/internal"
	"github.com/frahmantamala/request-routing/internal/auth"
	userDatamodel "github.com/frahmantamala/request-routing/internal/core/datamodel/user"
	"github.com/frahmantamala/request-routing/internal/core/events"
	"github.com/frahmantamala/request-routing/internal/department"
	"github.com/frahmantamala/request-routing/internal/user"
	userPostgres "github.com/frahmantamala/request-routing/internal/user/postgres"
)

type recordingPublisher struct {
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.events = append(p.events, e)
	return nil
}

func openTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	Expect(err).NotTo(HaveOccurred())
	Expect(db.AutoMigrate(&userDatamodel.User{})).To(Succeed())
	return db
}

var _ = Describe("User Service", func() {
	var (
		ctx       context.Context
		db        *gorm.DB
		publisher *recordingPublisher
		service   *user.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		db = openTestDB()
		publisher = &recordingPublisher{}
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = user.NewService(userPostgres.NewUserRepository(db), auth.PlainPasswords{}, publisher, slogger)

		seed := []*userDatamodel.User{
			{Email: "emp1@x.com", Name: "سالم", Role: "employee", RawRole: "موظف", Password: "pw", Department: "تقنية المعلومات", Status: userDatamodel.StatusActive},
			{Email: "emp2@x.com", Name: "خالد", Role: "employee", RawRole: "عامل", Password: "pw", Department: "الادارة المالية", Status: userDatamodel.StatusActive},
			{Email: "mgr@x.com", Name: "مدير", Role: "department_manager", RawRole: "مدير القسم", Password: "pw", Department: "الشبكات", Status: userDatamodel.StatusActive},
			{Email: "old@x.com", Name: "قديم", Role: "employee", RawRole: "موظف", Password: "pw", Department: "ادارة التقنية", Status: userDatamodel.StatusArchived},
		}
		for _, u := range seed {
			Expect(db.Create(u).Error).To(Succeed())
		}
	})

	Describe("Employees", func() {
		It("returns active employees of the canonical department", func() {
			employees, err := service.Employees(ctx, user.GetEmployeesDTO{Department: "ادارة التقنية"})

			Expect(err).NotTo(HaveOccurred())
			Expect(employees).To(HaveLen(1))
			Expect(employees[0].Email).To(Equal("emp1@x.com"))
			Expect(employees[0].Department).To(Equal(department.IT))
		})

		It("returns every active employee when no department is given", func() {
			employees, err := service.Employees(ctx, user.GetEmployeesDTO{})

			Expect(err).NotTo(HaveOccurred())
			Expect(employees).To(HaveLen(2))
		})

		It("returns an empty list for an unknown department", func() {
			employees, err := service.Employees(ctx, user.GetEmployeesDTO{Department: "قسم غير موجود"})

			Expect(err).NotTo(HaveOccurred())
			Expect(employees).To(BeEmpty())
		})
	})

	Describe("AddUser", func() {
		It("stores the resolved role and canonical department", func() {
			u, err := service.AddUser(ctx, user.AddUserDTO{
				Name: "ليلى", Email: " Laila@X.com ", Password: "secret",
				Role: "رئيس القسم", Department: "ادارة المالية",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(u.Email).To(Equal("laila@x.com"))
			Expect(u.Role).To(Equal(auth.RoleDepartmentManager))
			Expect(u.RawRole).To(Equal("رئيس القسم"))
			Expect(u.Department).To(Equal(department.Finance))
			Expect(u.Status).To(Equal(user.StatusActive))
			Expect(publisher.events).To(HaveLen(1))
			Expect(publisher.events[0].EventType()).To(Equal(events.EventTypeUserChanged))
		})

		It("rejects a duplicate email", func() {
			_, err := service.AddUser(ctx, user.AddUserDTO{
				Name: "x", Email: "EMP1@x.com", Password: "pw", Role: "موظف", Department: "الادارة المالية",
			})

			Expect(err).To(MatchError(internal.ErrUserExists))
		})

		It("rejects missing fields", func() {
			_, err := service.AddUser(ctx, user.AddUserDTO{Email: "n@x.com"})

			Expect(err).To(MatchError(internal.ErrMissingFields))
		})
	})

	Describe("UpdateUser", func() {
		It("changes only the fields that are set", func() {
			role := "مدير عام"
			u, err := service.UpdateUser(ctx, user.UpdateUserDTO{Email: "emp2@x.com", Role: &role})

			Expect(err).NotTo(HaveOccurred())
			Expect(u.Role).To(Equal(auth.RoleGeneralManager))
			Expect(u.Name).To(Equal("خالد"))
			Expect(u.Department).To(Equal("الادارة المالية"))
		})

		It("returns not found for an unknown email", func() {
			name := "x"
			_, err := service.UpdateUser(ctx, user.UpdateUserDTO{Email: "ghost@x.com", Name: &name})

			Expect(err).To(MatchError(internal.ErrUserNotFound))
		})
	})

	Describe("ArchiveUser", func() {
		It("hides the user from listings", func() {
			Expect(service.ArchiveUser(ctx, user.ArchiveUserDTO{Email: "emp2@x.com"})).To(Succeed())

			users, err := service.ListUsers(ctx, user.ListUsersDTO{})
			Expect(err).NotTo(HaveOccurred())
			for _, u := range users {
				Expect(u.Email).NotTo(Equal("emp2@x.com"))
			}

			all, err := service.ListUsers(ctx, user.ListUsersDTO{IncludeArchived: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(4))
		})
	})

	Describe("ListUsers", func() {
		It("filters by canonical department and role", func() {
			users, err := service.ListUsers(ctx, user.ListUsersDTO{Department: department.IT, Role: "department_manager"})

			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(1))
			Expect(users[0].Email).To(Equal("mgr@x.com"))
		})

		It("rejects an unknown role filter", func() {
			_, err := service.ListUsers(ctx, user.ListUsersDTO{Role: "boss"})

			Expect(err).To(MatchError(internal.ErrInvalidRole))
		})
	})

	Describe("ResetPassword", func() {
		It("replaces the stored password", func() {
			Expect(service.ResetPassword(ctx, user.ResetPasswordDTO{Email: "emp1@x.com", NewPassword: "new-pw"})).To(Succeed())

			var row userDatamodel.User
			Expect(db.Where("email = ?", "emp1@x.com").First(&row).Error).To(Succeed())
			Expect(row.Password).To(Equal("new-pw"))
		})

		It("returns not found for an unknown email", func() {
			err := service.ResetPassword(ctx, user.ResetPasswordDTO{Email: "ghost@x.com", NewPassword: "x"})

			Expect(err).To(MatchError(internal.ErrUserNotFound))
		})

		It("requires both fields", func() {
			err := service.ResetPassword(ctx, user.ResetPasswordDTO{Email: "emp1@x.com"})

			Expect(err).To(MatchError(internal.ErrMissingFields))
		})
	})
})
