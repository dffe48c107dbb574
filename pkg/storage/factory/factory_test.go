package factory_test

import (
	"context"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/storage/factory"
	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/storage/inmemory"
	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/storage/sqlite"
)

var _ = Describe("Open", func() {
	DescribeTable("backend selection",
		func(c factory.Config, want string) {
			Expect(c.Backend()).To(Equal(want))
		},
		Entry("nothing set", factory.Config{}, factory.BackendInMemory),
		Entry("sqlite path", factory.Config{SQLitePath: "/tmp/x.sqlite"}, factory.BackendSQLite),
		Entry("postgres wins", factory.Config{SQLitePath: "/tmp/x.sqlite", PostgresDSN: "postgres://db"}, factory.BackendPostgres),
	)

	It("opens an in-memory store by default", func() {
		d, err := factory.Open(context.Background(), factory.Config{})
		Expect(err).NotTo(HaveOccurred())
		Expect(d).To(BeAssignableToTypeOf(&inmemory.Driver{}))
	})

	It("opens sqlite when a path is set", func() {
		d, err := factory.Open(context.Background(), factory.Config{
			SQLitePath: filepath.Join(GinkgoT().TempDir(), "h.sqlite"),
		})
		Expect(err).NotTo(HaveOccurred())
		defer d.Close()
		Expect(d).To(BeAssignableToTypeOf(&sqlite.Driver{}))
	})

	It("surfaces postgres errors", func() {
		_, err := factory.Open(context.Background(), factory.Config{PostgresDSN: "postgres://%zz"})
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("OrSQLite", func() {
	It("fills the sqlite path when nothing is configured", func() {
		c := factory.Config{}.OrSQLite("/tmp/history.sqlite")
		Expect(c.SQLitePath).To(Equal("/tmp/history.sqlite"))
		Expect(c.Backend()).To(Equal(factory.BackendSQLite))
	})

	It("leaves an explicit sqlite path alone", func() {
		c := factory.Config{SQLitePath: "/data/mine.sqlite"}.OrSQLite("/tmp/history.sqlite")
		Expect(c.SQLitePath).To(Equal("/data/mine.sqlite"))
	})

	It("does not add sqlite next to postgres", func() {
		c := factory.Config{PostgresDSN: "postgres://db"}.OrSQLite("/tmp/history.sqlite")
		Expect(c.SQLitePath).To(BeEmpty())
		Expect(c.Backend()).To(Equal(factory.BackendPostgres))
	})
})
