// Package storagetest holds the behaviour every storage.Driver must share,
// written as ginkgo specs so each backend's suite can run it.
package storagetest

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/conversation"
	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/storage"
)

// base has no sub-microsecond part; postgres keeps microseconds.
var base = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

// Message builds a message offset from a fixed base time.
func Message(role conversation.Role, content string, offset time.Duration) conversation.Message {
	return conversation.NewMessage(role, content, base.Add(offset))
}

// DriverBehaviour registers specs against the driver returned by newDriver,
// which is called once per spec.
func DriverBehaviour(newDriver func() storage.Driver) bool {
	return Describe("storage.Driver behaviour", func() {
		driverBehaviour(newDriver)
	})
}

func driverBehaviour(newDriver func() storage.Driver) {
	var (
		ctx    context.Context
		driver storage.Driver
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = newDriver()
		DeferCleanup(func() { Expect(driver.Close()).To(Succeed()) })
	})

	It("appends and reads back a transcript in order", func() {
		user := Message(conversation.RoleUser, "How many students enrolled?", 0)
		answer := Message(conversation.RoleAssistant, "42 this week.", time.Second)

		Expect(driver.AppendMessages(ctx, "room-1", user, answer)).To(Succeed())

		msgs, err := driver.Messages(ctx, "room-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(msgs).To(HaveLen(2))
		Expect(msgs[0].ID).To(Equal(user.ID))
		Expect(msgs[0].Role).To(Equal(conversation.RoleUser))
		Expect(msgs[0].Content).To(Equal("How many students enrolled?"))
		Expect(msgs[0].Timestamp).To(BeTemporally("==", user.Timestamp))
		Expect(msgs[1].Content).To(Equal("42 this week."))
	})

	It("appends later turns after earlier ones", func() {
		first := Message(conversation.RoleUser, "one", 0)
		second := Message(conversation.RoleUser, "two", time.Second)

		Expect(driver.AppendMessages(ctx, "room-1", first)).To(Succeed())
		Expect(driver.AppendMessages(ctx, "room-1", second)).To(Succeed())

		msgs, err := driver.Messages(ctx, "room-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(msgs).To(HaveLen(2))
		Expect(msgs[0].Content).To(Equal("one"))
		Expect(msgs[1].Content).To(Equal("two"))
	})

	It("skips messages that are already stored", func() {
		m := Message(conversation.RoleUser, "hello", 0)

		Expect(driver.AppendMessages(ctx, "room-1", m)).To(Succeed())
		Expect(driver.AppendMessages(ctx, "room-1", m)).To(Succeed())

		msgs, err := driver.Messages(ctx, "room-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(msgs).To(HaveLen(1))
	})

	It("keeps rooms apart", func() {
		Expect(driver.AppendMessages(ctx, "room-1", Message(conversation.RoleUser, "a", 0))).To(Succeed())
		Expect(driver.AppendMessages(ctx, "room-2", Message(conversation.RoleUser, "b", 0))).To(Succeed())

		msgs, err := driver.Messages(ctx, "room-2")
		Expect(err).NotTo(HaveOccurred())
		Expect(msgs).To(HaveLen(1))
		Expect(msgs[0].Content).To(Equal("b"))
	})

	It("returns NotFoundError for an unknown room", func() {
		_, err := driver.Messages(ctx, "missing")
		Expect(storage.IsNotFound(err)).To(BeTrue())
		Expect(err).To(MatchError("room not found: missing"))
	})

	It("rejects an empty room id", func() {
		err := driver.AppendMessages(ctx, "", Message(conversation.RoleUser, "a", 0))
		Expect(err).To(MatchError(storage.ErrEmptyRoomID))
	})

	It("treats an empty append as a no-op", func() {
		Expect(driver.AppendMessages(ctx, "room-1")).To(Succeed())
		rooms, err := driver.Rooms(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(rooms).To(BeEmpty())
	})

	It("lists rooms most recently updated first", func() {
		Expect(driver.AppendMessages(ctx, "old",
			Message(conversation.RoleUser, "a", 0),
			Message(conversation.RoleAssistant, "b", time.Second),
		)).To(Succeed())
		Expect(driver.AppendMessages(ctx, "new",
			Message(conversation.RoleUser, "c", time.Minute),
		)).To(Succeed())

		rooms, err := driver.Rooms(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(rooms).To(HaveLen(2))
		Expect(rooms[0].ID).To(Equal("new"))
		Expect(rooms[0].Messages).To(Equal(1))
		Expect(rooms[0].UpdatedAt).To(BeTemporally("==", base.Add(time.Minute)))
		Expect(rooms[1].ID).To(Equal("old"))
		Expect(rooms[1].Messages).To(Equal(2))
	})

	It("loads a transcript for resuming", func() {
		Expect(driver.AppendMessages(ctx, "room-1", Message(conversation.RoleUser, "a", 0))).To(Succeed())

		t, err := storage.LoadTranscript(ctx, driver, "room-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(t.Len()).To(Equal(1))
	})
}
