package rtd

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dep2p/go-rtdbridge/internal/core/dispatch"
	"github.com/dep2p/go-rtdbridge/pkg/interfaces"
	"github.com/dep2p/go-rtdbridge/pkg/lib/log"
	"github.com/dep2p/go-rtdbridge/pkg/lib/xloper"
	"github.com/dep2p/go-rtdbridge/pkg/types"
)

var logger = log.Logger("core/rtd")

// Notifier 更新通知器，由派发器实现
type Notifier interface {
	Notify()
	Close() error
}

// NotifierFactory 为宿主的事件接收者创建通知器
type NotifierFactory func(sink any) (Notifier, error)

// FromDispatchFactory 将派发器工厂适配为 NotifierFactory
func FromDispatchFactory(f *dispatch.Factory) NotifierFactory {
	return func(sink any) (Notifier, error) {
		return f.New(sink)
	}
}

// ============================================================================
//                              Server - 主题服务器
// ============================================================================

// Server RTD 主题服务器
type Server struct {
	bus       interfaces.Bus
	newNotify NotifierFactory
	alloc     xloper.Allocator
	loc       *time.Location

	mu         sync.Mutex
	notifier   Notifier
	terminated bool
	topics     map[int32]*topic
	feeds      map[string]*feed
	dirty      map[int32]struct{}
	wg         sync.WaitGroup
}

// topic 单元格主题
type topic struct {
	id   int32
	path string
}

// feed 一个路径的共享订阅
type feed struct {
	path   string
	sub    interfaces.BusSubscription
	topics map[int32]struct{}
}

// Option 服务器选项
type Option func(*Server)

// WithAllocator 设置 RefreshData 结果使用的分配器
func WithAllocator(a xloper.Allocator) Option {
	return func(s *Server) { s.alloc = a }
}

// WithLocation 设置时间值转换使用的时区
func WithLocation(loc *time.Location) Option {
	return func(s *Server) { s.loc = loc }
}

// NewServer 创建主题服务器
func NewServer(bus interfaces.Bus, newNotify NotifierFactory, opts ...Option) *Server {
	s := &Server{
		bus:       bus,
		newNotify: newNotify,
		alloc:     xloper.DefaultAllocator,
		loc:       time.Local,
		topics:    make(map[int32]*topic),
		feeds:     make(map[string]*feed),
		dirty:     make(map[int32]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ServerStart 宿主启动服务器并交出事件接收者，成功返回 1
//
// 事件接收者在调用线程上被编组，之后只由派发器工作线程使用。
func (s *Server) ServerStart(sink any) (int32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.terminated {
		return 0, ErrTerminated
	}
	if s.notifier != nil {
		return 0, ErrAlreadyStarted
	}

	n, err := s.newNotify(sink)
	if err != nil {
		logger.Error("创建派发器失败，更新通知已禁用", "error", err)
		return 0, err
	}
	s.notifier = n
	logger.Info("RTD 服务器已启动")
	return 1, nil
}

// ConnectData 为主题建立数据连接，返回初始值
//
// args[0] 为总线路径。路径尚无值时返回 #GETTING_DATA。
func (s *Server) ConnectData(id int32, args []string) (xloper.Value, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return xloper.ErrorValue(xloper.ErrNA), ErrNoPath
	}
	path := strings.TrimSpace(args[0])

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.notifier == nil {
		return xloper.ErrorValue(xloper.ErrNA), ErrNotStarted
	}
	if _, ok := s.topics[id]; ok {
		return xloper.ErrorValue(xloper.ErrNA), ErrDuplicateTopic
	}

	f, ok := s.feeds[path]
	if !ok {
		sub, err := s.bus.Subscribe(path)
		if err != nil {
			logger.Warn("订阅路径失败", "path", path, "topic", id, "error", err)
			return xloper.ErrorValue(xloper.ErrNA), fmt.Errorf("subscribe %s: %w", path, err)
		}
		f = &feed{path: path, sub: sub, topics: make(map[int32]struct{})}
		s.feeds[path] = f
		s.wg.Add(1)
		go s.forward(f)
	}
	f.topics[id] = struct{}{}
	s.topics[id] = &topic{id: id, path: path}

	logger.Debug("主题已连接", "topic", id, "path", path, "shared", len(f.topics))

	last := f.sub.Last()
	if last.Kind() == types.KindNull {
		return xloper.ErrorValue(xloper.ErrGettingData), nil
	}
	return xloper.FromBusIn(s.alloc, last, s.loc), nil
}

// RefreshData 返回所有待刷新主题的最新值
//
// 结果为 2×N 的数组：第一行为主题号，第二行为对应的值；N 为主题数量。
// 返回的数组为本侧所有，调用方负责 Destroy 或移交宿主。
func (s *Server) RefreshData() (xloper.Value, int) {
	s.mu.Lock()
	ids := make([]int32, 0, len(s.dirty))
	for id := range s.dirty {
		if _, ok := s.topics[id]; ok {
			ids = append(ids, id)
		}
	}
	s.dirty = make(map[int32]struct{})

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	values := make([]types.Value, len(ids))
	for i, id := range ids {
		values[i] = s.feeds[s.topics[id].path].sub.Last()
	}
	s.mu.Unlock()

	out := xloper.NewMulti(s.alloc, 2, len(ids))
	for i, id := range ids {
		idv := xloper.FromInt(id)
		val := xloper.FromBusIn(s.alloc, values[i], s.loc)
		out.SetCell(s.alloc, 0, i, &idv)
		out.SetCell(s.alloc, 1, i, &val)
	}
	return out, len(ids)
}

// DisconnectData 断开主题，路径上没有主题时取消订阅
func (s *Server) DisconnectData(id int32) {
	s.mu.Lock()
	t, ok := s.topics[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.topics, id)
	delete(s.dirty, id)

	f := s.feeds[t.path]
	delete(f.topics, id)
	var sub interfaces.BusSubscription
	if len(f.topics) == 0 {
		delete(s.feeds, t.path)
		sub = f.sub
	}
	s.mu.Unlock()

	logger.Debug("主题已断开", "topic", id, "path", t.path)
	if sub != nil {
		if err := sub.Close(); err != nil {
			logger.Debug("取消订阅失败", "path", t.path, "error", err)
		}
	}
}

// Heartbeat 服务器运行中返回 1，否则返回 0
func (s *Server) Heartbeat() int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.notifier != nil && !s.terminated {
		return 1
	}
	return 0
}

// ServerTerminate 终止服务器，关闭所有订阅和派发器
func (s *Server) ServerTerminate() error {
	s.mu.Lock()
	if s.terminated {
		s.mu.Unlock()
		return nil
	}
	s.terminated = true
	feeds := s.feeds
	n := s.notifier
	s.feeds = make(map[string]*feed)
	s.topics = make(map[int32]*topic)
	s.dirty = make(map[int32]struct{})
	s.notifier = nil
	s.mu.Unlock()

	for _, f := range feeds {
		_ = f.sub.Close()
	}
	s.wg.Wait()

	var err error
	if n != nil {
		err = n.Close()
	}
	logger.Info("RTD 服务器已终止", "feeds", len(feeds))
	return err
}

// Topics 返回已连接的主题数
func (s *Server) Topics() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.topics)
}

// Feeds 返回活跃的路径订阅数
func (s *Server) Feeds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.feeds)
}

// forward 把路径更新转换为待刷新标记和通知，订阅关闭后退出
func (s *Server) forward(f *feed) {
	defer s.wg.Done()

	for range f.sub.Updates() {
		s.mu.Lock()
		// 订阅可能已被替换或移除
		if s.feeds[f.path] != f {
			s.mu.Unlock()
			continue
		}
		for id := range f.topics {
			s.dirty[id] = struct{}{}
		}
		n := s.notifier
		s.mu.Unlock()

		if n != nil {
			n.Notify()
		}
	}
}
