package app

import (
	"os"

	"go-hrms/internal/allowance"
	"go-hrms/internal/attendance"
	"go-hrms/internal/auth"
	"go-hrms/internal/contract"
	"go-hrms/internal/employee"
	"go-hrms/internal/holiday"
	"go-hrms/internal/leave"
	"go-hrms/internal/payroll"
	"go-hrms/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func BuildApp(router *gin.Engine) error {
	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}
	zap.L().Info("database connection established")

	if err := gormDB.AutoMigrate(
		&auth.User{},
		&employee.Employee{},
		&contract.Contract{},
		&holiday.Holiday{},
		&allowance.Grant{},
		&attendance.Attendance{},
		&leave.LeaveType{},
		&leave.LeaveBalance{},
		&leave.LeaveRequest{},
		&payroll.Salary{},
	); err != nil {
		return err
	}

	db, err := gormDB.DB()
	if err != nil {
		return err
	}

	redisClient, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		// Redis only backs caching and idempotency; the API still
		// works without it.
		zap.L().Warn("redis unavailable, continuing without cache", zap.Error(err))
		redisClient = nil
	} else {
		zap.L().Info("redis connection established")
	}

	return registerModules(router, db, gormDB, redisClient)
}
