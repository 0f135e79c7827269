package service

import (
	"Volunteer/internal/model"
	"Volunteer/internal/pkg/mongo"
	"Volunteer/internal/pkg/presence"
	"bytes"
	"context"
	"errors"
	"iter"
	"slices"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
)

var errStorage = errors.New("storage unavailable")

// memMessageRepo 内存版消息存储，语义与 Mongo 实现一致
type memMessageRepo struct {
	mu       sync.Mutex
	messages []*mongo.Message
	saves    int
	markOK   int

	// onFindUnread 模拟读取未读列表之后并发到达的新消息，只触发一次
	onFindUnread func()
}

func cloneMessage(m *mongo.Message) *mongo.Message {
	c := *m
	c.Recipients = slices.Clone(m.Recipients)
	c.ReadBy = slices.Clone(m.ReadBy)
	return &c
}

func chronoLess(a, b *mongo.Message) int {
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return bytes.Compare(a.ID[:], b.ID[:])
}

func (r *memMessageRepo) SaveMessage(_ context.Context, msg *mongo.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}
	r.saves++
	r.messages = append(r.messages, cloneMessage(msg))
	return nil
}

func (r *memMessageRepo) GetByID(_ context.Context, id primitive.ObjectID) (*mongo.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ID == id {
			return cloneMessage(m), nil
		}
	}
	return nil, mongodrv.ErrNoDocuments
}

func (r *memMessageRepo) selectSorted(match func(*mongo.Message) bool, desc bool) []*mongo.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*mongo.Message, 0)
	for _, m := range r.messages {
		if match(m) {
			out = append(out, cloneMessage(m))
		}
	}
	slices.SortStableFunc(out, chronoLess)
	if desc {
		slices.Reverse(out)
	}
	return out
}

func (r *memMessageRepo) FindConversation(_ context.Context, a, b uint64) iter.Seq2[*mongo.Message, error] {
	return func(yield func(*mongo.Message, error) bool) {
		msgs := r.selectSorted(func(m *mongo.Message) bool {
			return (m.SenderID == a && m.HasRecipient(b)) || (m.SenderID == b && m.HasRecipient(a))
		}, false)
		for _, m := range msgs {
			if !yield(m, nil) {
				return
			}
		}
	}
}

func (r *memMessageRepo) FindInbox(_ context.Context, userID uint64) ([]*mongo.Message, error) {
	return r.selectSorted(func(m *mongo.Message) bool { return m.HasRecipient(userID) }, true), nil
}

func (r *memMessageRepo) unreadFrom(counterpart, reader uint64) []*mongo.Message {
	return r.selectSorted(func(m *mongo.Message) bool {
		return m.SenderID == counterpart && m.HasRecipient(reader) && !m.IsReadBy(reader)
	}, false)
}

func (r *memMessageRepo) FindUnreadFrom(_ context.Context, counterpart, reader uint64) ([]*mongo.Message, error) {
	out := r.unreadFrom(counterpart, reader)
	r.mu.Lock()
	hook := r.onFindUnread
	r.onFindUnread = nil
	r.mu.Unlock()
	if hook != nil {
		hook()
	}
	return out, nil
}

func (r *memMessageRepo) CountUnreadFrom(_ context.Context, counterpart, reader uint64) (int64, error) {
	return int64(len(r.unreadFrom(counterpart, reader))), nil
}

func (r *memMessageRepo) MarkRead(_ context.Context, id primitive.ObjectID, reader uint64, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ID != id {
			continue
		}
		if !m.HasRecipient(reader) {
			return false, mongodrv.ErrNoDocuments
		}
		if m.IsReadBy(reader) {
			return false, nil
		}
		m.ReadBy = append(m.ReadBy, mongo.ReadReceipt{UserID: reader, ReadAt: at})
		r.markOK++
		return true, nil
	}
	return false, mongodrv.ErrNoDocuments
}

func (r *memMessageRepo) receipts(id string) []mongo.ReadReceipt {
	oid, _ := primitive.ObjectIDFromHex(id)
	m, err := r.GetByID(context.Background(), oid)
	if err != nil {
		return nil
	}
	return m.ReadBy
}

type pair struct{ owner, counterpart uint64 }

// memLedger 内存账本，可按 owner 注入写失败
type memLedger struct {
	mu         sync.Mutex
	counts     map[pair]uint64
	increments int
	resets     int
	sets       int
	failFor    map[uint64]bool

	// onIncrement 在首次自增写入前执行一次，模拟落库与自增之间插入的已读
	onIncrement func()
}

func newMemLedger() *memLedger {
	return &memLedger{counts: make(map[pair]uint64), failFor: make(map[uint64]bool)}
}

func (l *memLedger) Increment(_ context.Context, owner, counterpart uint64) error {
	l.mu.Lock()
	hook := l.onIncrement
	l.onIncrement = nil
	l.mu.Unlock()
	if hook != nil {
		hook()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failFor[owner] {
		return errStorage
	}
	l.increments++
	l.counts[pair{owner, counterpart}]++
	return nil
}

func (l *memLedger) Reset(_ context.Context, owner, counterpart uint64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.resets++
	k := pair{owner, counterpart}
	if l.counts[k] == 0 {
		return false, nil
	}
	l.counts[k] = 0
	return true, nil
}

func (l *memLedger) Set(_ context.Context, owner, counterpart uint64, n uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sets++
	l.counts[pair{owner, counterpart}] = n
	return nil
}

func (l *memLedger) Get(_ context.Context, owner, counterpart uint64) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.counts[pair{owner, counterpart}], nil
}

func (l *memLedger) ListByOwner(_ context.Context, owner uint64) ([]*model.UnreadLedger, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*model.UnreadLedger, 0)
	for k, v := range l.counts {
		if k.owner == owner {
			out = append(out, &model.UnreadLedger{OwnerID: owner, CounterpartID: k.counterpart, UnreadCount: v})
		}
	}
	return out, nil
}

func (l *memLedger) TotalUnread(ctx context.Context, owner uint64) (uint64, error) {
	entries, _ := l.ListByOwner(ctx, owner)
	var total uint64
	for _, e := range entries {
		total += e.UnreadCount
	}
	return total, nil
}

func (l *memLedger) get(owner, counterpart uint64) uint64 {
	n, _ := l.Get(context.Background(), owner, counterpart)
	return n
}

type pushed struct {
	room    presence.Room
	event   string
	payload any
}

type recordTransport struct {
	mu     sync.Mutex
	pushes []pushed
	err    error
}

func (t *recordTransport) Push(_ context.Context, room presence.Room, event string, payload any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pushes = append(t.pushes, pushed{room: room, event: event, payload: payload})
	return t.err
}

func (t *recordTransport) to(room presence.Room) []pushed {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]pushed, 0)
	for _, p := range t.pushes {
		if p.room == room {
			out = append(out, p)
		}
	}
	return out
}

func (t *recordTransport) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pushes)
}

type memDirty struct {
	mu    sync.Mutex
	pairs []pair
}

func (d *memDirty) Mark(_ context.Context, owner, counterpart uint64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pairs = append(d.pairs, pair{owner, counterpart})
	return nil
}

func (d *memDirty) marked() []pair {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.pairs)
}

type memUserRepo struct {
	mu      sync.Mutex
	users   map[uint64]*model.User
	lookups int
}

func (r *memUserRepo) lookupCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lookups
}

func (r *memUserRepo) GetUserById(_ context.Context, id uint64) (*model.User, error) {
	return r.users[id], nil
}

func (r *memUserRepo) GetUserByIds(_ context.Context, ids []uint64) ([]*model.User, error) {
	r.mu.Lock()
	r.lookups++
	r.mu.Unlock()
	out := make([]*model.User, 0)
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

type memNameCache struct {
	mu    sync.Mutex
	names map[uint64]string
}

func (c *memNameCache) GetName(_ context.Context, id uint64) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.names[id]
	return n, ok
}

func (c *memNameCache) SetName(_ context.Context, id uint64, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names[id] = name
}

type memEventRepo struct {
	events map[uint64]*model.Event
}

func (r *memEventRepo) GetEventById(_ context.Context, id uint64) (*model.Event, error) {
	return r.events[id], nil
}

func (r *memEventRepo) GetEventsByUser(_ context.Context, userID uint64) ([]*model.Event, error) {
	out := make([]*model.Event, 0)
	for _, e := range r.events {
		if e.IsParticipant(userID) {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b *model.Event) int { return int(a.ID) - int(b.ID) })
	return out, nil
}

// memEventChatRepo GetHead 与 AppendMessage 分别加锁，并发广播时会真实地发生版本冲突
type memEventChatRepo struct {
	mu           sync.Mutex
	chats        map[uint64]*mongo.EventChat
	conflicts    int
	beforeAppend func()
}

func newMemEventChatRepo() *memEventChatRepo {
	return &memEventChatRepo{chats: make(map[uint64]*mongo.EventChat)}
}

func (r *memEventChatRepo) GetChat(_ context.Context, eventID uint64) (*mongo.EventChat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chats[eventID]
	if !ok {
		return nil, nil
	}
	cp := *c
	cp.Members = slices.Clone(c.Members)
	cp.Messages = slices.Clone(c.Messages)
	return &cp, nil
}

func (r *memEventChatRepo) GetHead(ctx context.Context, eventID uint64) (*mongo.EventChat, error) {
	c, err := r.GetChat(ctx, eventID)
	if c != nil {
		c.Messages = nil
	}
	return c, err
}

func (r *memEventChatRepo) EnsureChat(_ context.Context, eventID uint64, members []uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chats[eventID]
	if !ok {
		c = &mongo.EventChat{EventID: eventID, Members: []uint64{}, Messages: []mongo.EventChatMessage{}, CreatedAt: time.Now()}
		r.chats[eventID] = c
	}
	for _, m := range members {
		if !slices.Contains(c.Members, m) {
			c.Members = append(c.Members, m)
		}
	}
	return nil
}

func (r *memEventChatRepo) AppendMessage(_ context.Context, eventID uint64, expected uint64, msg *mongo.EventChatMessage) (bool, error) {
	if hook := r.beforeAppend; hook != nil {
		r.beforeAppend = nil
		hook()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chats[eventID]
	if !ok || c.Version != expected {
		r.conflicts++
		return false, nil
	}
	c.Messages = append(c.Messages, *msg)
	c.Version++
	return true, nil
}

// memNotificationRepo 内存版通知收件箱，err 非空时所有写入失败
type memNotificationRepo struct {
	mu      sync.Mutex
	notices []*mongo.Notification
	err     error
}

func (r *memNotificationRepo) CreateNotification(_ context.Context, n *mongo.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	c := *n
	r.notices = append(r.notices, &c)
	return nil
}

func (r *memNotificationRepo) GetNotificationList(_ context.Context, receiverID uint64, kind string, limit, offset int64) ([]*mongo.Notification, error) {
	list := r.of(receiverID)
	list = slices.DeleteFunc(list, func(n *mongo.Notification) bool {
		return kind != "" && n.Type != kind
	})
	slices.Reverse(list)
	if offset >= int64(len(list)) {
		return []*mongo.Notification{}, nil
	}
	return list[offset:min(offset+limit, int64(len(list)))], nil
}

func (r *memNotificationRepo) MarkAsRead(_ context.Context, receiverID uint64, id primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notices {
		if n.ID == id && n.ReceiverID == receiverID {
			changed := !n.IsRead
			n.IsRead = true
			return changed, nil
		}
	}
	return false, mongodrv.ErrNoDocuments
}

func (r *memNotificationRepo) MarkAllAsRead(_ context.Context, receiverID uint64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, notice := range r.notices {
		if notice.ReceiverID == receiverID && !notice.IsRead {
			notice.IsRead = true
			n++
		}
	}
	return n, nil
}

func (r *memNotificationRepo) GetUnreadCount(_ context.Context, receiverID uint64) (int64, error) {
	var n int64
	for _, notice := range r.of(receiverID) {
		if !notice.IsRead {
			n++
		}
	}
	return n, nil
}

// of 按写入顺序返回某用户的通知副本
func (r *memNotificationRepo) of(receiverID uint64) []*mongo.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*mongo.Notification, 0)
	for _, n := range r.notices {
		if n.ReceiverID == receiverID {
			c := *n
			out = append(out, &c)
		}
	}
	return out
}
