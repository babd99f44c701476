package database

import (
	"fmt"
	"log"
	"time"
)

// Close đóng tất cả connections trong pool và cleanup resources
// Function này nên được gọi khi application shutdown để graceful cleanup
// Safe to call multiple times - subsequent calls sẽ là no-op
func (db *PostgresDB) Close() error {
	if db.Pool == nil {
		// Pool đã closed hoặc chưa initialized - Close() idempotent
		log.Println("[DATABASE] Pool is already closed or was never initialized")
		return nil
	}

	log.Println("[DATABASE] Closing database connection pool...")

	// Pool.Close() chờ acquired connections được release rồi mới terminate
	db.Pool.Close()

	// Đảm bảo subsequent calls biết pool đã closed
	db.Pool = nil

	log.Println("[DATABASE] Connection pool closed successfully")
	return nil
}

// PoolStats chứa thống kê chi tiết về connection pool
// Struct này được dùng cho monitoring và debugging performance issues
type PoolStats struct {
	AcquireCount       int64         // Tổng số lần acquire connection (lifetime metric)
	AcquireDuration    time.Duration // Tổng thời gian spent acquiring connections
	AvgAcquireDuration time.Duration // AcquireDuration / AcquireCount
	AcquiredConns      int32         // Số connections hiện đang được used
	IdleConns          int32         // Số connections idle, sẵn sàng dùng
	MaxConns           int32         // Max connections configured
	TotalConns         int32         // Total connections (acquired + idle + constructing)
	NewConnsCount      int64         // Số connections mới đã tạo (lifetime metric)
}

// Stats trả về snapshot của connection pool statistics
// Được expose qua /db-test endpoint cho monitoring và tuning
func (db *PostgresDB) Stats() (*PoolStats, error) {
	if db.Pool == nil {
		return nil, fmt.Errorf("database pool is not initialized")
	}

	// Pool.Stat() là atomic snapshot - all values consistent tại một thời điểm
	rawStats := db.Pool.Stat()

	return &PoolStats{
		AcquiredConns:      rawStats.AcquiredConns(),
		IdleConns:          rawStats.IdleConns(),
		TotalConns:         rawStats.TotalConns(),
		MaxConns:           rawStats.MaxConns(),
		AcquireCount:       rawStats.AcquireCount(),
		AcquireDuration:    rawStats.AcquireDuration(),
		AvgAcquireDuration: calculateAvgDuration(rawStats.AcquireDuration(), rawStats.AcquireCount()),
		NewConnsCount:      rawStats.NewConnsCount(),
	}, nil
}

// calculateAvgDuration là helper để tính average acquire duration
func calculateAvgDuration(totalDuration time.Duration, count int64) time.Duration {
	if count == 0 {
		return 0
	}
	return totalDuration / time.Duration(count)
}
