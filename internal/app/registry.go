package app

import (
	"database/sql"

	"go-hrms/internal/allowance"
	"go-hrms/internal/attendance"
	"go-hrms/internal/auth"
	"go-hrms/internal/contract"
	"go-hrms/internal/employee"
	"go-hrms/internal/holiday"
	"go-hrms/internal/leave"
	"go-hrms/internal/messaging/kafka"
	"go-hrms/internal/middleware"
	"go-hrms/internal/payroll"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	authRepo := auth.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	contractRepo := contract.NewRepository(gormDB)
	holidayRepo := holiday.NewRepository(gormDB)
	allowanceRepo := allowance.NewRepository(gormDB)
	attendanceRepo := attendance.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	payrollRepo := payroll.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- Services ---
	authService := auth.NewService(authRepo, employeeRepo)
	employeeService := employee.NewService(db, employeeRepo, rdb)
	contractService := contract.NewService(db, contractRepo, employeeRepo)
	holidayService := holiday.NewService(holidayRepo)
	allowanceService := allowance.NewService(allowanceRepo)
	attendanceService := attendance.NewService(db, attendanceRepo, attendance.DefaultSchedule())
	leaveService := leave.NewServiceWithOutbox(db, leaveRepo, outboxRepo)
	payrollService := payroll.NewService(payroll.Config{
		DB:         db,
		Repo:       payrollRepo,
		Employees:  employeeRepo,
		Attendance: attendanceRepo,
		Holidays:   holidayRepo,
		Allowances: allowanceRepo,
		Outbox:     outboxRepo,
		Locks:      rdb,
	})

	// --- Handlers ---
	authHandler := auth.NewHandler(authService)
	employeeHandler := employee.NewHandler(employeeService)
	contractHandler := contract.NewHandler(contractService)
	holidayHandler := holiday.NewHandler(holidayService)
	allowanceHandler := allowance.NewHandler(allowanceService)
	attendanceHandler := attendance.NewHandler(attendanceService)
	leaveHandler := leave.NewHandler(leaveService)
	payrollHandler := payroll.NewHandlerWithRedis(payrollService, rdb)

	router.Use(middleware.RequestID())
	router.Use(middleware.ContextLogger(zap.L()))

	// --- Routes ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler)
		employee.RegisterRoutes(api, employeeHandler)
		contract.RegisterRoutes(api, contractHandler)
		holiday.RegisterRoutes(api, holidayHandler)
		allowance.RegisterRoutes(api, allowanceHandler)
		attendance.RegisterRoutes(api, attendanceHandler)
		leave.RegisterRoutes(api, leaveHandler)
		payroll.RegisterRoutes(api, payrollHandler, rdb)
	}

	return nil
}
