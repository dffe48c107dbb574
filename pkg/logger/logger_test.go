package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/logger"
)

// decode reads a single JSON log line.
func decode(buf *bytes.Buffer) map[string]any {
	var parsed map[string]any
	ExpectWithOffset(1, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &parsed)).To(Succeed())
	return parsed
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("sink down") }

var _ = Describe("New", func() {
	var buf *bytes.Buffer

	BeforeEach(func() {
		buf = &bytes.Buffer{}
	})

	It("writes text records by default", func() {
		logger.New(logger.WithWriter(buf)).Info("frame applied", "kind", "content")

		Expect(buf.String()).To(ContainSubstring("frame applied"))
		Expect(buf.String()).To(ContainSubstring("kind=content"))
	})

	It("writes JSON records", func() {
		logger.New(logger.WithWriter(buf), logger.WithJSON(true)).Info("turn stored", "messages", 2)

		line := decode(buf)
		Expect(line["msg"]).To(Equal("turn stored"))
		Expect(line["messages"]).To(BeNumerically("==", 2))
	})

	It("writes pretty records", func() {
		logger.New(logger.WithWriter(buf), logger.WithPretty(true)).Info("dev server ready")
		Expect(buf.String()).To(ContainSubstring("dev server ready"))
	})

	DescribeTable("level filtering",
		func(opt logger.Option, emit func(*slog.Logger), visible bool) {
			emit(logger.New(logger.WithWriter(buf), opt))
			if visible {
				Expect(buf.String()).NotTo(BeEmpty())
			} else {
				Expect(buf.String()).To(BeEmpty())
			}
		},
		Entry("debug shown with --debug", logger.WithDebug(true), func(l *slog.Logger) { l.Debug("x") }, true),
		Entry("debug hidden without --debug", logger.WithDebug(false), func(l *slog.Logger) { l.Debug("x") }, false),
		Entry("info hidden at warn", logger.WithLevel(slog.LevelWarn), func(l *slog.Logger) { l.Info("x") }, false),
		Entry("error shown at warn", logger.WithLevel(slog.LevelWarn), func(l *slog.Logger) { l.Error("x") }, true),
	)

	It("keeps only the last writer", func() {
		other := &bytes.Buffer{}
		logger.New(logger.WithWriter(other), logger.WithWriter(buf)).Info("last")

		Expect(buf.String()).To(ContainSubstring("last"))
		Expect(other.String()).To(BeEmpty())
	})

	It("adds source locations", func() {
		logger.New(logger.WithWriter(buf), logger.WithJSON(true), logger.WithSource(true)).Info("located")
		Expect(decode(buf)).To(HaveKey("source"))
	})

	It("tags records with a component", func() {
		logger.New(logger.WithWriter(buf), logger.WithJSON(true), logger.WithComponent("worker")).Info("job done")
		Expect(decode(buf)["component"]).To(Equal("worker"))
	})

	It("nests grouped attributes", func() {
		logger.New(logger.WithWriter(buf), logger.WithJSON(true)).
			WithGroup("request").Info("chat", "room_id", "42")

		group, ok := decode(buf)["request"].(map[string]any)
		Expect(ok).To(BeTrue())
		Expect(group["room_id"]).To(Equal("42"))
	})
})

var _ = Describe("Nop", func() {
	It("is disabled at every level", func() {
		h := logger.Nop().Handler()
		for _, lvl := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
			Expect(h.Enabled(context.Background(), lvl)).To(BeFalse())
		}
	})

	It("survives derived loggers", func() {
		Expect(func() {
			logger.Nop().With("k", "v").WithGroup("g").Error("ignored")
		}).NotTo(Panic())
	})
})

var _ = Describe("OrNop", func() {
	It("returns the given logger when set", func() {
		l := logger.New()
		Expect(logger.OrNop(l)).To(BeIdenticalTo(l))
	})

	It("falls back to a discarding logger", func() {
		Expect(logger.OrNop(nil).Handler().Enabled(context.Background(), slog.LevelError)).To(BeFalse())
	})
})

var _ = Describe("Multi", func() {
	It("sends each record to every logger", func() {
		console, file := &bytes.Buffer{}, &bytes.Buffer{}
		multi := logger.Multi(
			logger.New(logger.WithWriter(console)),
			logger.New(logger.WithWriter(file), logger.WithJSON(true)),
		)

		multi.With("room_id", "7").Info("turn finished")

		Expect(console.String()).To(ContainSubstring("turn finished"))
		Expect(decode(file)["room_id"]).To(Equal("7"))
	})

	It("respects each logger's own level", func() {
		console, file := &bytes.Buffer{}, &bytes.Buffer{}
		multi := logger.Multi(
			logger.New(logger.WithWriter(console)),
			logger.New(logger.WithWriter(file), logger.WithDebug(true)),
		)

		multi.Debug("chunk read")

		Expect(console.String()).To(BeEmpty())
		Expect(file.String()).To(ContainSubstring("chunk read"))
	})

	It("skips nil and nop loggers", func() {
		buf := &bytes.Buffer{}
		l := logger.New(logger.WithWriter(buf))
		multi := logger.Multi(nil, logger.Nop(), l)

		Expect(multi.Handler()).To(Equal(l.Handler()))
	})

	It("is a nop with nothing to write to", func() {
		multi := logger.Multi(nil, logger.Nop())
		Expect(multi.Handler().Enabled(context.Background(), slog.LevelError)).To(BeFalse())
	})

	It("keeps writing when one sink fails", func() {
		buf := &bytes.Buffer{}
		multi := logger.Multi(
			slog.New(failingHandler{}),
			logger.New(logger.WithWriter(buf)),
		)

		err := multi.Handler().Handle(context.Background(), slog.NewRecord(time.Time{}, slog.LevelInfo, "still here", 0))
		Expect(err).To(MatchError("sink down"))
		Expect(buf.String()).To(ContainSubstring("still here"))
	})
})
