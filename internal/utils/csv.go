package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"cryptoTradingBot/internal/domain"
)

// WriteKlinesToCSV writes klines to a CSV file, one row per candle.
func WriteKlinesToCSV(klines []*domain.Kline, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	writer.Write([]string{"open_time", "close_time", "symbol", "interval", "open", "high", "low", "close", "volume"})

	for _, k := range klines {
		writer.Write([]string{
			k.OpenTime.Format(time.RFC3339),
			k.CloseTime.Format(time.RFC3339),
			k.Symbol,
			k.Interval,
			strconv.FormatFloat(k.Open, 'f', -1, 64),
			strconv.FormatFloat(k.High, 'f', -1, 64),
			strconv.FormatFloat(k.Low, 'f', -1, 64),
			strconv.FormatFloat(k.Close, 'f', -1, 64),
			strconv.FormatFloat(k.Volume, 'f', -1, 64),
		})
	}
	return writer.Error()
}

// ReadKlinesFromCSV reads klines written by WriteKlinesToCSV. Historical
// candles are always final.
func ReadKlinesFromCSV(filename string) ([]*domain.Kline, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)

	// Skip header
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("read CSV header from %s: %w", filename, err)
	}

	var klines []*domain.Kline
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV record at %s:%d: %w", filename, line, err)
		}
		if len(record) < 9 {
			return nil, fmt.Errorf("short CSV record at %s:%d: got %d fields, want 9", filename, line, len(record))
		}
		k, err := parseKlineRecord(record)
		if err != nil {
			return nil, fmt.Errorf("parse CSV record at %s:%d: %w", filename, line, err)
		}
		klines = append(klines, k)
	}
	return klines, nil
}

func parseKlineRecord(record []string) (*domain.Kline, error) {
	openTime, err := time.Parse(time.RFC3339, record[0])
	if err != nil {
		return nil, fmt.Errorf("open_time: %w", err)
	}
	closeTime, err := time.Parse(time.RFC3339, record[1])
	if err != nil {
		return nil, fmt.Errorf("close_time: %w", err)
	}
	floats := make([]float64, 5)
	for i, name := range []string{"open", "high", "low", "close", "volume"} {
		floats[i], err = strconv.ParseFloat(record[4+i], 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	return &domain.Kline{
		OpenTime:  openTime,
		CloseTime: closeTime,
		Symbol:    record[2],
		Interval:  record[3],
		Open:      floats[0],
		High:      floats[1],
		Low:       floats[2],
		Close:     floats[3],
		Volume:    floats[4],
		IsFinal:   true,
	}, nil
}

// WriteTradesToCSV writes closed trades to a CSV file, one row per trade.
func WriteTradesToCSV(trades []*domain.Trade, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	writer.Write([]string{"wallet", "symbol", "side", "entry_price", "exit_price", "quantity", "gross_pnl", "commission", "net_pnl", "opened_at", "closed_at", "close_reason"})

	for _, tr := range trades {
		writer.Write([]string{
			tr.Wallet,
			tr.Symbol,
			string(tr.Side),
			strconv.FormatFloat(tr.EntryPrice, 'f', -1, 64),
			strconv.FormatFloat(tr.ExitPrice, 'f', -1, 64),
			strconv.FormatFloat(tr.Quantity, 'f', -1, 64),
			strconv.FormatFloat(tr.GrossPnL, 'f', -1, 64),
			strconv.FormatFloat(tr.Commission, 'f', -1, 64),
			strconv.FormatFloat(tr.NetPnL, 'f', -1, 64),
			tr.OpenedAt.Format(time.RFC3339),
			tr.ClosedAt.Format(time.RFC3339),
			string(tr.CloseReason),
		})
	}
	return writer.Error()
}
