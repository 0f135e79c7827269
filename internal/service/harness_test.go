package service

import (
	"Volunteer/internal/model"
	"time"
)

const (
	alice = uint64(1)
	bob   = uint64(2)
	carol = uint64(3)
	dave  = uint64(4)
)

type harness struct {
	messages  *memMessageRepo
	ledger    *memLedger
	transport *recordTransport
	dirty     *memDirty
	users     *memUserRepo
	cache     *memNameCache
	events    *memEventRepo
	chats     *memEventChatRepo
	notices   *memNotificationRepo

	store      MessageStore
	directory  UserDirectory
	dispatcher DispatcherService
	readSync   ReadSyncService
	eventChat  EventChatService
	query      ChatQueryService
	reconcile  LedgerReconcileService
	notifier   NotificationService
}

func newHarness() *harness {
	h := &harness{
		messages:  &memMessageRepo{},
		ledger:    newMemLedger(),
		transport: &recordTransport{},
		dirty:     &memDirty{},
		users: &memUserRepo{users: map[uint64]*model.User{
			alice: {ID: alice, Name: "Alice"},
			bob:   {ID: bob, Name: "Bob"},
			carol: {ID: carol, Name: "Carol"},
			dave:  {ID: dave, Name: "Dave"},
		}},
		cache:   &memNameCache{names: make(map[uint64]string)},
		events:  &memEventRepo{events: make(map[uint64]*model.Event)},
		chats:   newMemEventChatRepo(),
		notices: &memNotificationRepo{},
	}

	timeout := time.Second
	h.store = NewMessageStore(h.messages, timeout)
	h.directory = NewUserDirectory(h.users, h.cache)
	h.dispatcher = NewDispatcherService(h.store, h.ledger, h.directory, h.transport, h.dirty, timeout)
	h.readSync = NewReadSyncService(h.store, h.ledger, h.transport, h.dirty, timeout)
	h.notifier = NewNotificationService(h.notices, h.transport, timeout, timeout)
	h.eventChat = NewEventChatService(h.events, h.chats, h.directory, h.notifier, h.transport, timeout, timeout, 5)
	h.query = NewChatQueryService(h.store, h.ledger, h.directory, h.readSync, timeout)
	h.reconcile = NewLedgerReconcileService(h.store, h.ledger, timeout)
	return h
}

// settle 等待所有后台推送落到 transport
func (h *harness) settle() {
	h.dispatcher.Wait()
	h.readSync.Wait()
	h.eventChat.Wait()
	h.notifier.Wait()
}

func (h *harness) addEvent(id, manager uint64, members ...uint64) *model.Event {
	e := &model.Event{ID: id, Title: "清洁海滩", CreatedBy: manager, Date: time.Now()}
	for _, m := range members {
		e.Members = append(e.Members, model.EventTeamMember{EventID: id, UserID: m})
	}
	h.events.events[id] = e
	return e
}
