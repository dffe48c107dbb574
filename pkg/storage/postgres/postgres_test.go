package postgres_test

import (
	"context"
	"fmt"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/storage"
	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/storage/postgres"
	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/storage/storagetest"
)

// connStr returns the PostgreSQL connection string from environment or skips the test.
func connStr() string {
	dsn := os.Getenv("EDRILA_TEST_POSTGRES_DSN")
	if dsn == "" {
		Skip("EDRILA_TEST_POSTGRES_DSN not set, skipping PostgreSQL tests")
	}
	return dsn
}

var _ = Describe("Driver", func() {
	storagetest.DriverBehaviour(func() storage.Driver {
		ctx := context.Background()
		d, err := postgres.NewDriver(ctx, connStr())
		Expect(err).NotTo(HaveOccurred())

		// Clean all messages before each test for isolation.
		_, err = d.Pool.Exec(ctx, "TRUNCATE edrila_messages")
		Expect(err).NotTo(HaveOccurred())
		return d
	})

	It("returns an error for an unreachable server", func() {
		_, err := postgres.NewDriver(context.Background(), "host=invalid port=9999 user=bad dbname=bad sslmode=disable connect_timeout=1")
		Expect(err).To(HaveOccurred())
		fmt.Fprintf(GinkgoWriter, "expected error: %v\n", err)
	})

	It("returns an error for a malformed connection string", func() {
		_, err := postgres.NewDriver(context.Background(), "postgres://%zz")
		Expect(err).To(MatchError(ContainSubstring("parse pgx config")))
	})
})
