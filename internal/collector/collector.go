// Package collector feeds council node telemetry into the governance
// engine from a CometBFT node: it subscribes to block and vote events,
// accumulates per-validator participation windows, and flushes derived
// uptime/performance scores as metrics reports.
package collector

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"council-governance/internal/config"
	"council-governance/internal/governance"
	"council-governance/internal/logger"
	"council-governance/internal/models"
	"council-governance/internal/moniker"
	"council-governance/internal/tui"

	rpchttp "github.com/cometbft/cometbft/rpc/client/http"
	rpccoretypes "github.com/cometbft/cometbft/rpc/core/types"
	cmttypes "github.com/cometbft/cometbft/types"
	"gorm.io/gorm"
)

const (
	// TUIChannelBufferSize is the dashboard update channel capacity.
	TUIChannelBufferSize = 64
	// TUICloseDelay gives the dashboard a moment to drain on shutdown.
	TUICloseDelay = 200 * time.Millisecond

	subscriberName  = "govfeed"
	watchdogTimeout = 30 * time.Second
)

type Collector struct {
	cfg    config.Config
	db     *gorm.DB // optional, persists raw telemetry samples
	engine *governance.Engine
	client *rpchttp.HTTP
	monres *moniker.Resolver
	tuiCh  chan<- interface{}
	log    *logger.Logger

	window  *Window
	chainID string

	lastBlockTime   time.Time
	lastBlockTimeMu sync.RWMutex
}

func NewCollector(cfg config.Config, db *gorm.DB, engine *governance.Engine, tuiCh chan<- interface{}, log *logger.Logger) (*Collector, error) {
	// rpchttp.New takes RPC base URL and WS path separately
	c, err := rpchttp.New(cfg.RPCURL, cfg.WSURL())
	if err != nil {
		return nil, err
	}
	return &Collector{
		cfg:    cfg,
		db:     db,
		engine: engine,
		client: c,
		monres: moniker.NewResolver(cfg.RPCURL, cfg.AppAPIURL, log),
		tuiCh:  tuiCh,
		log:    log,
		window: NewWindow(),
	}, nil
}

func (c *Collector) Run(ctx context.Context) error {
	for {
		if err := c.runLoop(ctx); err != nil {
			if ctx.Err() != nil {
				return nil // Context cancelled, normal shutdown
			}
			// Only log actual errors, not planned reconnects
			if !strings.Contains(err.Error(), "reconnect:") {
				c.log.Errorf("run loop: %v, reconnecting...", err)
			}
			time.Sleep(3 * time.Second) // Brief pause before reconnecting
		}
	}
}

func (c *Collector) runLoop(ctx context.Context) error {
	// Cancellable context per connection cycle so reconnects stop all
	// handler goroutines of the previous cycle.
	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := c.cleanupClient(loopCtx); err != nil {
		c.log.Printf("warning: error during client cleanup: %v", err)
	}
	if err := c.initClient(); err != nil {
		return err
	}

	if status, err := c.client.Status(loopCtx); err == nil {
		c.chainID = status.NodeInfo.Network
		c.log.Printf("connected to %s at height %d", c.chainID, status.SyncInfo.LatestBlockHeight)
	}

	subs, err := c.subscribeToEvents(loopCtx)
	if err != nil {
		return err
	}

	c.updateLastBlockTime()
	c.startEventHandlers(loopCtx, subs)

	return c.watchdogLoop(loopCtx)
}

// cleanupClient stops and cleans up the existing client (reconnect case).
func (c *Collector) cleanupClient(ctx context.Context) error {
	if c.client == nil {
		return nil
	}

	unsubCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	_ = c.client.UnsubscribeAll(unsubCtx, subscriberName)
	c.client.Stop()
	c.client = nil

	time.Sleep(500 * time.Millisecond) // Brief pause for cleanup
	return nil
}

// initClient creates and starts a new RPC client
func (c *Collector) initClient() error {
	client, err := rpchttp.New(c.cfg.RPCURL, c.cfg.WSURL())
	if err != nil {
		return fmt.Errorf("create rpc client: %w", err)
	}
	if err := client.Start(); err != nil {
		return fmt.Errorf("start rpc client: %w", err)
	}
	c.client = client
	return nil
}

type eventSubscriptions struct {
	blockCh <-chan rpccoretypes.ResultEvent
	voteCh  <-chan rpccoretypes.ResultEvent
}

func (c *Collector) subscribeToEvents(ctx context.Context) (*eventSubscriptions, error) {
	subs := &eventSubscriptions{}

	blockCh, err := c.client.Subscribe(ctx, subscriberName, "tm.event = 'NewBlock'")
	if err != nil {
		return nil, fmt.Errorf("subscribe NewBlock: %w", err)
	}
	subs.blockCh = blockCh

	voteCh, err := c.client.Subscribe(ctx, subscriberName, "tm.event = 'Vote'")
	if err != nil {
		return nil, fmt.Errorf("subscribe Vote: %w", err)
	}
	subs.voteCh = voteCh

	c.log.Printf("subscribed to events: NewBlock, Vote")
	return subs, nil
}

func (c *Collector) startEventHandlers(ctx context.Context, subs *eventSubscriptions) {
	c.startEventHandler(ctx, "NewBlock", subs.blockCh, func(ev rpccoretypes.ResultEvent) {
		if ev.Data != nil {
			c.handleNewBlock(ev)
		}
	})
	c.startEventHandler(ctx, "Vote", subs.voteCh, func(ev rpccoretypes.ResultEvent) {
		if ev.Data != nil {
			c.handleVote(ev)
		}
	})
}

// startEventHandler starts a goroutine to handle events from a channel
func (c *Collector) startEventHandler(ctx context.Context, name string, ch <-chan rpccoretypes.ResultEvent, handler func(rpccoretypes.ResultEvent)) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-ch:
				if !ok {
					c.log.Printf("%s event channel closed", name)
					return
				}
				handler(ev)
			}
		}
	}()
}

// updateLastBlockTime updates the last block time (thread-safe)
func (c *Collector) updateLastBlockTime() {
	c.lastBlockTimeMu.Lock()
	c.lastBlockTime = time.Now()
	c.lastBlockTimeMu.Unlock()
}

// watchdogLoop forces a reconnect when no blocks arrive for too long.
func (c *Collector) watchdogLoop(ctx context.Context) error {
	watchdog := time.NewTicker(watchdogTimeout)
	defer watchdog.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-watchdog.C:
			if c.shouldReconnect() {
				c.log.Printf("no blocks received for %s, reconnecting WebSocket...", watchdogTimeout)
				c.client = nil
				c.updateLastBlockTime()
				return fmt.Errorf("reconnect: no blocks for %s", watchdogTimeout)
			}
		}
	}
}

func (c *Collector) shouldReconnect() bool {
	c.lastBlockTimeMu.RLock()
	defer c.lastBlockTimeMu.RUnlock()
	return time.Since(c.lastBlockTime) > watchdogTimeout
}

func (c *Collector) Close() error {
	if c.client != nil {
		c.client.Stop()
	}
	return nil
}

func (c *Collector) handleNewBlock(ev rpccoretypes.ResultEvent) {
	data, ok := ev.Data.(cmttypes.EventDataNewBlock)
	if !ok {
		// some versions wrap pointers
		if d2, ok2 := ev.Data.(*cmttypes.EventDataNewBlock); ok2 && d2 != nil {
			data = *d2
			ok = true
		}
	}
	if !ok {
		c.log.Printf("unknown NewBlock event data type: %T", ev.Data)
		return
	}

	blk := data.Block
	if blk == nil || blk.Header.Height == 0 {
		return
	}

	c.lastBlockTimeMu.RLock()
	delta := time.Since(c.lastBlockTime)
	c.lastBlockTimeMu.RUnlock()
	c.updateLastBlockTime()

	proposer := fmt.Sprintf("%X", blk.ProposerAddress)
	blocks := c.window.ObserveBlock(blk.Header.Height, proposer)
	c.log.Printf("block observed: height=%d proposer=%s window=%d", blk.Header.Height, proposer[:min(16, len(proposer))], blocks)

	c.send(tui.ChainMsg{
		ChainID:   c.chainID,
		Height:    blk.Header.Height,
		BlockTime: delta,
	})

	flushEvery := int64(c.cfg.MetricsFlushBlocks)
	if flushEvery <= 0 {
		flushEvery = 20
	}
	if blocks >= flushEvery {
		c.flushMetrics(blk.Header.Height)
	}
}

// handleVote accumulates prevotes and precommits into the current window.
// Called from a handler goroutine; the window is thread-safe.
func (c *Collector) handleVote(ev rpccoretypes.ResultEvent) {
	data, ok := ev.Data.(cmttypes.EventDataVote)
	if !ok {
		c.log.Printf("unknown Vote event data type: %T", ev.Data)
		return
	}
	if data.Vote == nil {
		return
	}
	vote := data.Vote

	// 1 = Prevote, 2 = Precommit
	precommit := vote.Type == 2
	c.window.ObserveVote(vote.Height, fmt.Sprintf("%X", vote.ValidatorAddress), precommit)
}

// flushMetrics converts the finished window into metrics reports, one per
// node, persists the raw samples when a database is attached, and pushes
// fresh governance and council views to the dashboard.
func (c *Collector) flushMetrics(height int64) {
	samples := c.window.Snapshot()
	c.window.Reset()
	if len(samples) == 0 {
		return
	}

	now := time.Now().UTC()
	rows := make([]*models.MetricsSample, 0, len(samples))
	for _, s := range samples {
		name := c.resolveMoniker(s.NodeID)
		if _, err := c.engine.UpdateNodeMetrics(c.cfg.SystemIdentity, s.NodeID, governance.MetricsInput{
			UptimePercent:    s.UptimePercent,
			PerformanceScore: s.PerformanceScore,
			BlocksProduced:   s.BlocksProduced,
		}); err != nil {
			c.log.Errorf("report metrics for %s: %v", s.NodeID, err)
			continue
		}
		rows = append(rows, &models.MetricsSample{
			NodeID:           s.NodeID,
			Moniker:          name,
			UptimePercent:    s.UptimePercent,
			PerformanceScore: s.PerformanceScore,
			BlocksProduced:   s.BlocksProduced,
			SampledAt:        now,
		})
	}

	if c.db != nil && len(rows) > 0 {
		if err := c.db.CreateInBatches(rows, 100).Error; err != nil {
			c.log.Errorf("flush %d samples at height %d: %v", len(rows), height, err)
		} else {
			c.log.Printf("flushed %d samples at height %d", len(rows), height)
		}
	}

	c.pushGovernance()
	c.pushCouncil()
}

func (c *Collector) pushGovernance() {
	stats, err := c.engine.Stats()
	if err != nil {
		c.log.Errorf("read stats: %v", err)
		return
	}
	cfg, err := c.engine.VotingConfig()
	if err != nil {
		c.log.Errorf("read voting config: %v", err)
		return
	}
	proposals, err := c.engine.ListProposals()
	if err != nil {
		c.log.Errorf("list proposals: %v", err)
		return
	}

	msg := tui.GovernanceMsg{
		Proposals:  stats.Proposals,
		Voters:     stats.Voters,
		TotalPower: stats.TotalVotingPower,
		QuorumBps:  cfg.QuorumBps,
	}
	for _, p := range proposals {
		if p.Status == governance.StatusActive || p.Status == governance.StatusQuorumReached {
			msg.Active++
		}
		msg.Rows = append(msg.Rows, tui.ProposalRow{
			ID:        p.ID,
			Title:     p.Title,
			Status:    p.Status.String(),
			Yes:       p.YesWeight,
			No:        p.NoWeight,
			VotingEnd: p.VotingEnd,
		})
	}
	c.send(msg)
}

func (c *Collector) pushCouncil() {
	recs, err := c.engine.Recommendations(0)
	if err != nil {
		c.log.Errorf("rank council nodes: %v", err)
		return
	}
	msg := tui.CouncilMsg{}
	for _, a := range recs {
		msg.Rows = append(msg.Rows, tui.CouncilRow{
			NodeID:  a.NodeID,
			Moniker: c.resolveMoniker(a.NodeID),
			Overall: a.Overall,
			Risk:    string(a.RiskLevel),
		})
	}
	c.send(msg)
}

// send forwards a dashboard update without ever blocking the feed.
func (c *Collector) send(msg interface{}) {
	if c.tuiCh == nil {
		return
	}
	select {
	case c.tuiCh <- msg:
	default:
	}
}

func (c *Collector) resolveMoniker(consAddrHex string) string {
	if c.monres == nil || consAddrHex == "" {
		return ""
	}
	return c.monres.Resolve(consAddrHex)
}
