package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mantlenetworkio/faucet-bot/op-service/eth"
	opmetrics "github.com/mantlenetworkio/faucet-bot/op-service/metrics"
)

func TestFaucetMetrics(t *testing.T) {
	m := NewMetrics("")

	require.NotEmpty(t, m.Document(), "sanity check there are generated metrics docs")

	version := "v3.4.5"
	m.RecordInfo(version)
	m.RecordUp()

	onDone := m.RecordFundAction(eth.Ether(2))
	onDone(nil)
	onDone = m.RecordFundAction(eth.Ether(3))
	onDone(nil)

	onDone = m.RecordFundAction(eth.Ether(1000))
	onDone(errors.New("test err"))

	m.RecordRequest("sent")
	m.RecordRequest("sent")
	m.RecordRequest("cooldown")
	m.RecordBalance(eth.Ether(7))
	m.RecordNonce(3)

	c := opmetrics.NewMetricChecker(t, m.Registry())

	prefix := Namespace + "_default_"

	success := map[string]string{"err": "success"}
	failed := map[string]string{"err": "failed"}

	record := c.FindByName(prefix + "funding_eth_total").FindByLabels(success)
	require.Equal(t, eth.Ether(5).WeiFloat(), record.Counter.GetValue())

	record = c.FindByName(prefix + "funding_txs_total").FindByLabels(success)
	require.Equal(t, 2.0, record.Counter.GetValue())

	record = c.FindByName(prefix + "funding_eth_total").FindByLabels(failed)
	require.Equal(t, eth.Ether(1000).WeiFloat(), record.Counter.GetValue())

	record = c.FindByName(prefix + "funding_txs_total").FindByLabels(failed)
	require.Equal(t, 1.0, record.Counter.GetValue())

	require.Equal(t, uint64(3), c.FindByName(prefix+"funding_duration_seconds").SampleCount(nil))

	require.Equal(t, 2.0, c.FindByName(prefix+"requests_total").Value(map[string]string{"outcome": "sent"}))
	require.Equal(t, 1.0, c.FindByName(prefix+"requests_total").Value(map[string]string{"outcome": "cooldown"}))

	require.Equal(t, eth.Ether(7).WeiFloat(), c.FindByName(prefix+"balance_wei").Value(nil))

	require.Equal(t, 3.0, c.FindByName(prefix+"txmgr_current_nonce").Value(nil))

	record = c.FindByName(prefix + "up").FindByLabels(nil)
	require.Equal(t, 1.0, record.Gauge.GetValue())

	record = c.FindByName(prefix + "info").FindByLabels(map[string]string{"version": version})
	require.Equal(t, 1.0, record.Gauge.GetValue())
}
