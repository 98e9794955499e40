package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dep2p/go-rtdbridge/internal/core/dispatch"
	"github.com/dep2p/go-rtdbridge/internal/core/localbus"
	"github.com/dep2p/go-rtdbridge/internal/core/multiplex"
	"github.com/dep2p/go-rtdbridge/internal/core/rtd"
)

// SetterStats 返回写入器统计，写入器尚未创建时 ok 为 false
type SetterStats func() (st multiplex.Stats, ok bool)

// Sources 指标来源，nil 字段对应的指标不输出
type Sources struct {
	Local   *localbus.Bus
	Server  *rtd.Server
	Factory *dispatch.Factory
	Setter  SetterStats
	SetRate *RateMeter
}

// Collector 把组件统计导出为 Prometheus 指标
type Collector struct {
	src Sources

	busPaths         *prometheus.Desc
	busSubscriptions *prometheus.Desc
	busWrites        *prometheus.Desc
	busDropped       *prometheus.Desc

	rtdTopics *prometheus.Desc
	rtdFeeds  *prometheus.Desc

	dispatchActive      *prometheus.Desc
	dispatchNotifies    *prometheus.Desc
	dispatchInvocations *prometheus.Desc
	dispatchFailures    *prometheus.Desc

	setterWrites     *prometheus.Desc
	setterSubscribes *prometheus.Desc
	setterFailures   *prometheus.Desc
	setCalls         *prometheus.Desc
	setRate          *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector 创建指标收集器
func NewCollector(namespace string, src Sources) *Collector {
	desc := func(subsystem, name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, name), help, nil, nil)
	}
	return &Collector{
		src: src,

		busPaths:         desc("bus", "paths", "进程内总线已知的路径数"),
		busSubscriptions: desc("bus", "subscriptions", "进程内总线当前的订阅数"),
		busWrites:        desc("bus", "writes_total", "进程内总线接受的写入次数"),
		busDropped:       desc("bus", "dropped_total", "因订阅通道已满丢弃的更新数"),

		rtdTopics: desc("rtd", "topics", "当前连接的 RTD 主题数"),
		rtdFeeds:  desc("rtd", "feeds", "当前的总线订阅源数"),

		dispatchActive:      desc("dispatch", "active", "工作线程仍在运行的派发器数"),
		dispatchNotifies:    desc("dispatch", "notifies_total", "被接受的通知次数"),
		dispatchInvocations: desc("dispatch", "invocations_total", "对事件接收者的调用次数"),
		dispatchFailures:    desc("dispatch", "failures_total", "对事件接收者的失败调用次数"),

		setterWrites:     desc("setter", "writes_total", "写入器写入总线的次数"),
		setterSubscribes: desc("setter", "subscribes_total", "写入器创建的订阅数"),
		setterFailures:   desc("setter", "failures_total", "写入器订阅失败次数"),
		setCalls:         desc("setter", "set_calls_total", "被接受的 NetSet 调用次数"),
		setRate:          desc("setter", "set_rate", "最近 60 秒的 NetSet 平均速率（每秒）"),
	}
}

// Describe 实现 prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		c.busPaths, c.busSubscriptions, c.busWrites, c.busDropped,
		c.rtdTopics, c.rtdFeeds,
		c.dispatchActive, c.dispatchNotifies, c.dispatchInvocations, c.dispatchFailures,
		c.setterWrites, c.setterSubscribes, c.setterFailures, c.setCalls, c.setRate,
	} {
		ch <- d
	}
}

// Collect 实现 prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	gauge := func(d *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v)
	}
	counter := func(d *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, v)
	}

	if c.src.Local != nil {
		st := c.src.Local.Stats()
		gauge(c.busPaths, float64(st.Paths))
		gauge(c.busSubscriptions, float64(st.Subscriptions))
		counter(c.busWrites, float64(st.Writes))
		counter(c.busDropped, float64(st.Dropped))
	}

	if c.src.Server != nil {
		gauge(c.rtdTopics, float64(c.src.Server.Topics()))
		gauge(c.rtdFeeds, float64(c.src.Server.Feeds()))
	}

	if c.src.Factory != nil {
		st := c.src.Factory.Stats()
		gauge(c.dispatchActive, float64(st.Active))
		counter(c.dispatchNotifies, float64(st.Notifies))
		counter(c.dispatchInvocations, float64(st.Invocations))
		counter(c.dispatchFailures, float64(st.Failures))
	}

	if c.src.Setter != nil {
		if st, ok := c.src.Setter(); ok {
			counter(c.setterWrites, float64(st.Writes))
			counter(c.setterSubscribes, float64(st.Subscribes))
			counter(c.setterFailures, float64(st.Failures))
		}
	}

	if c.src.SetRate != nil {
		counter(c.setCalls, float64(c.src.SetRate.Total()))
		gauge(c.setRate, c.src.SetRate.Rate())
	}
}
