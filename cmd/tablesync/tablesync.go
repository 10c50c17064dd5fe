// Package tablesync moves the positions and trades tables between CSV files and the database.
package tablesync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"stocktracker/src/repository"
	"stocktracker/src/tables"
)

type TableSync struct {
	Log    *logger.Entry
	DB     *gorm.DB
	Config *Config
}

type Counts struct {
	Positions int
	Trades    int
}

func (s *TableSync) positionsPath() string {
	return filepath.Join(s.Config.Dir, s.Config.PositionsFile)
}

func (s *TableSync) tradesPath() string {
	return filepath.Join(s.Config.Dir, s.Config.TradesFile)
}

// Import loads both CSV tables into the database. Positions are upserted by
// (account, symbol); trades are appended as they are, without recomputing positions.
// A missing file is skipped.
func (s *TableSync) Import(ctx context.Context) (Counts, error) {
	var counts Counts
	positionsRepo := repository.NewPositionRepository(s.DB)
	tradesRepo := repository.NewTradeRepository(s.DB)

	err := readFile(s.positionsPath(), func(r io.Reader) error {
		positions, err := tables.ReadPositions(r)
		if err != nil {
			return err
		}
		for i := range positions {
			if err := positionsRepo.Upsert(ctx, &positions[i]); err != nil {
				return err
			}
			counts.Positions++
		}
		return nil
	})
	if err != nil {
		return counts, fmt.Errorf("import %s: %w", s.positionsPath(), err)
	}

	err = readFile(s.tradesPath(), func(r io.Reader) error {
		trades, err := tables.ReadTrades(r)
		if err != nil {
			return err
		}
		for i := range trades {
			trades[i].Reference = uuid.NewString()
			if err := tradesRepo.Append(ctx, &trades[i]); err != nil {
				return err
			}
			counts.Trades++
		}
		return nil
	})
	if err != nil {
		return counts, fmt.Errorf("import %s: %w", s.tradesPath(), err)
	}

	s.Log.WithFields(map[string]interface{}{
		"positions": counts.Positions,
		"trades":    counts.Trades,
		"dir":       s.Config.Dir,
	}).Info("tables imported")
	return counts, nil
}

// Export writes both tables to CSV. Trades are written oldest first.
func (s *TableSync) Export(ctx context.Context) (Counts, error) {
	var counts Counts

	positions, err := repository.NewPositionRepository(s.DB).Search(ctx, repository.PositionSearchOptions{})
	if err != nil {
		return counts, err
	}
	trades, err := repository.NewTradeRepository(s.DB).Search(ctx, repository.TradeSearchOptions{})
	if err != nil {
		return counts, err
	}
	for i, j := 0, len(trades)-1; i < j; i, j = i+1, j-1 {
		trades[i], trades[j] = trades[j], trades[i]
	}

	if err := tables.WriteFile(s.positionsPath(), func(w io.Writer) error {
		return tables.WritePositions(w, positions)
	}); err != nil {
		return counts, fmt.Errorf("export %s: %w", s.positionsPath(), err)
	}
	if err := tables.WriteFile(s.tradesPath(), func(w io.Writer) error {
		return tables.WriteTrades(w, trades)
	}); err != nil {
		return counts, fmt.Errorf("export %s: %w", s.tradesPath(), err)
	}

	counts = Counts{Positions: len(positions), Trades: len(trades)}
	s.Log.WithFields(map[string]interface{}{
		"positions": counts.Positions,
		"trades":    counts.Trades,
		"dir":       s.Config.Dir,
	}).Info("tables exported")
	return counts, nil
}

func readFile(path string, read func(io.Reader) error) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.WithField("path", path).Warn("table file not found, skipping")
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()
	return read(f)
}
