package cache

import (
	"context"
	"testing"
	"time"

	"btc-basis/internal/basis"
	"btc-basis/internal/model"

	"github.com/shopspring/decimal"
)

func result(t *testing.T) *basis.Result {
	t.Helper()
	ts := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	txs := []model.Transaction{
		{Timestamp: ts, AmountBTC: decimal.RequireFromString("1"), PriceUSD: decimal.RequireFromString("100")},
		{Timestamp: ts.Add(time.Hour), AmountBTC: decimal.RequireFromString("-1"), PriceUSD: decimal.RequireFromString("150")},
	}
	res, err := basis.New(basis.Strict).Run(txs, model.FIFO)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return res
}

func TestKey(t *testing.T) {
	a := Key("abc", "csv", model.FIFO, basis.Strict)
	if a != Key("abc", "csv", model.FIFO, basis.Strict) {
		t.Error("Key is not deterministic")
	}
	if a == Key("abc", "csv", model.LIFO, basis.Strict) {
		t.Error("method must change the key")
	}
	if a == Key("abc", "csv", model.FIFO, basis.Lenient) {
		t.Error("policy must change the key")
	}
	if a == Key("abd", "csv", model.FIFO, basis.Strict) {
		t.Error("fingerprint must change the key")
	}
	if a == Key("abc", "xlsx", model.FIFO, basis.Strict) {
		t.Error("format must change the key")
	}
	if a != Key("abc", "CSV", model.FIFO, basis.Strict) {
		t.Error("format should be case-insensitive")
	}
}

func TestMemory_GetSet(t *testing.T) {
	c := NewMemory(time.Hour)
	defer c.Close()
	ctx := context.Background()

	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("empty cache should miss")
	}
	res := result(t)
	c.Set(ctx, "k", res)
	got, ok := c.Get(ctx, "k")
	if !ok || got != res {
		t.Fatalf("Get = %v, %v", got, ok)
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d", c.Len())
	}
}

func TestMemory_Expiry(t *testing.T) {
	c := NewMemory(-time.Second)
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "k", result(t))
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("expired entry should miss")
	}
	c.evictExpired(time.Now())
	if c.Len() != 0 {
		t.Errorf("Len after eviction = %d, want 0", c.Len())
	}
}

func TestNilCachesNeverHit(t *testing.T) {
	ctx := context.Background()
	var m *Memory
	var r *Redis
	for _, c := range []Cache{m, r} {
		c.Set(ctx, "k", result(t))
		if _, ok := c.Get(ctx, "k"); ok {
			t.Errorf("%T: nil cache hit", c)
		}
	}
	m.Close()
	if err := r.Close(); err != nil {
		t.Errorf("nil Redis Close: %v", err)
	}
}

func TestEncodeDecode_KeepsUndefinedBasis(t *testing.T) {
	res := result(t)
	raw, err := encode(res)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Method != model.FIFO || got.Policy != basis.Strict || len(got.Rows) != 2 {
		t.Fatalf("decoded = %+v", got)
	}
	if !got.Rows[0].CostBasisUSD.Valid || !got.Rows[0].CostBasisUSD.Decimal.Equal(decimal.NewFromInt(100)) {
		t.Errorf("row 0 basis = %+v", got.Rows[0].CostBasisUSD)
	}
	if got.Rows[1].CostBasisUSD.Valid || got.Rows[1].GainLossUSD.Valid {
		t.Errorf("row 1 should stay undefined, got %+v", got.Rows[1])
	}
	if !got.Rows[1].Timestamp.Equal(res.Rows[1].Timestamp) {
		t.Errorf("timestamp = %v", got.Rows[1].Timestamp)
	}
}

func TestRedisKey(t *testing.T) {
	if got := redisKey("abc"); got != "btcbasis:result:abc" {
		t.Errorf("redisKey = %s", got)
	}
}
