package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"gorm.io/gorm"

	"stocktracker/cmd/tablesync"
	"stocktracker/src/auth"
	"stocktracker/src/connectors"
	"stocktracker/src/database"
	"stocktracker/src/model"
	"stocktracker/src/portfolio"
	"stocktracker/src/report"
	"stocktracker/src/repository"
	"stocktracker/src/utils"
)

var Version string

func main() {
	app := cli.NewApp()
	app.Name = "stocktracker"
	app.Usage = "Personal portfolio tracker"
	app.Version = Version

	app.Commands = []cli.Command{
		tradeCMD,
		holdingCMD,
		importCMD,
		exportCMD,
		summaryCMD,
		quotesCMD,
		tokenCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var positionFlags = []cli.Flag{
	cli.StringFlag{Name: "account, a", Usage: "account name, e.g. ISA"},
	cli.StringFlag{Name: "symbol, s", Usage: "stock symbol"},
	cli.StringFlag{Name: "name, n", Usage: "stock name"},
}

var (
	tradeCMD = cli.Command{
		Name:      "trade",
		Usage:     "record a buy, sell or transfer",
		Action:    tradeAction,
		ArgsUsage: "",
		Flags: append([]cli.Flag{
			cli.StringFlag{Name: "type, t", Usage: "B (Buy), S (Sell) or T (Transfer)"},
			cli.StringFlag{Name: "date, d", Usage: "trade date YYYY-MM-DD, defaults to today"},
			cli.StringFlag{Name: "shares", Usage: "shares traded"},
			cli.StringFlag{Name: "price", Usage: "price per share"},
			cli.StringFlag{Name: "commission", Value: "0", Usage: "commission paid"},
		}, positionFlags...),
		Description: `Append the trade to the history and update the position`,
	}
	holdingCMD = cli.Command{
		Name:      "holding",
		Usage:     "add a holding acquired before tracking started",
		Action:    holdingAction,
		ArgsUsage: "",
		Flags: append([]cli.Flag{
			cli.StringFlag{Name: "quantity, q", Usage: "shares held"},
			cli.StringFlag{Name: "book-cost", Usage: "total book cost"},
			cli.StringFlag{Name: "date, d", Usage: "acquisition date YYYY-MM-DD, defaults to today"},
		}, positionFlags...),
		Description: `Create the position with average cost = book cost / quantity`,
	}
	importCMD = cli.Command{
		Name:        "import",
		Usage:       "load positions.csv and trades.csv into the database",
		Action:      importAction,
		Flags:       []cli.Flag{cli.StringFlag{Name: "dir", Usage: "directory holding the CSV tables"}},
		Description: `Positions are upserted, trades appended as they are`,
	}
	exportCMD = cli.Command{
		Name:        "export",
		Usage:       "write the database to positions.csv and trades.csv",
		Action:      exportAction,
		Flags:       []cli.Flag{cli.StringFlag{Name: "dir", Usage: "output directory"}},
		Description: `Export both tables in their CSV column order`,
	}
	summaryCMD = cli.Command{
		Name:   "summary",
		Usage:  "print the portfolio summary",
		Action: summaryAction,
		Flags: []cli.Flag{
			cli.StringFlag{Name: "account, a", Usage: "only this account"},
			cli.IntFlag{Name: "width", Value: 100, Usage: "word wrap width"},
			cli.BoolFlag{Name: "raw", Usage: "print markdown without styling"},
		},
		Description: `Positions grouped by account with totals, rendered as markdown`,
	}
	quotesCMD = cli.Command{
		Name:   "quotes",
		Usage:  "show market data for a symbol",
		Action: quotesAction,
		Flags: []cli.Flag{
			cli.StringFlag{Name: "symbol, s", Usage: "stock symbol"},
			cli.StringFlag{Name: "period, p", Value: "1mo", Usage: "1d,5d,1mo,3mo,6mo,1y,2y,5y,max"},
			cli.DurationFlag{Name: "resample", Usage: "merge bars into buckets of this width, e.g. 1h"},
		},
		Description: `Print the OHLCV series and the latest quote`,
	}
)

var tokenCMD = cli.Command{
	Name:        "token",
	Usage:       "print the API_TOKEN_HASH for a bearer token",
	Action:      tokenAction,
	ArgsUsage:   "<token>",
	Description: `Hash a bearer token with bcrypt for the write routes of the HTTP API`,
}

func openDB() (*gorm.DB, error) {
	db, err := database.Open(database.GetConfig())
	if err != nil {
		logrus.WithError(err).Error("Failed to connect to database")
		return nil, err
	}
	return db, nil
}

func newService(db *gorm.DB) *portfolio.Service {
	return portfolio.NewService(
		logrus.WithField("cmd", "stocktracker"),
		repository.NewPositionRepository(db),
		repository.NewTradeRepository(db),
		repository.NewExceptionRepository(db),
	)
}

func decimalFlag(c *cli.Context, name string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(c.String(name))
	if raw == "" {
		return decimal.Zero, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid --%s %q", name, raw)
	}
	return value, nil
}

func dateFlag(c *cli.Context, name string) (time.Time, error) {
	raw := c.String(name)
	if raw == "" {
		return time.Time{}, nil
	}
	return utils.ParseDate(raw)
}

func outcome(out portfolio.Outcome, err error) error {
	if err != nil {
		logrus.WithError(err).Debug("request rejected")
	}
	fmt.Println(out.Message)
	if out.Reference != "" {
		fmt.Println("Reference:", out.Reference)
	}
	if !out.Success {
		return cli.NewExitError("", 1)
	}
	return nil
}

func tradeAction(c *cli.Context) error {
	req := portfolio.TradeRequest{
		Account:     c.String("account"),
		StockName:   c.String("name"),
		StockSymbol: c.String("symbol"),
		Type:        model.TradeType(c.String("type")),
	}
	var err error
	if req.Date, err = dateFlag(c, "date"); err != nil {
		return err
	}
	if req.Shares, err = decimalFlag(c, "shares"); err != nil {
		return err
	}
	if req.Price, err = decimalFlag(c, "price"); err != nil {
		return err
	}
	if req.Commission, err = decimalFlag(c, "commission"); err != nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	return outcome(newService(db).SubmitTrade(context.Background(), req))
}

func holdingAction(c *cli.Context) error {
	req := portfolio.HoldingRequest{
		Account:     c.String("account"),
		StockName:   c.String("name"),
		StockSymbol: c.String("symbol"),
	}
	var err error
	if req.DateOfAcquisition, err = dateFlag(c, "date"); err != nil {
		return err
	}
	if req.Quantity, err = decimalFlag(c, "quantity"); err != nil {
		return err
	}
	if req.BookCost, err = decimalFlag(c, "book-cost"); err != nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	return outcome(newService(db).AddHolding(context.Background(), req))
}

func newTableSync(c *cli.Context) (*tablesync.TableSync, error) {
	db, err := openDB()
	if err != nil {
		return nil, err
	}
	config := tablesync.GetConfig()
	if dir := c.String("dir"); dir != "" {
		config.Dir = dir
	}
	return &tablesync.TableSync{
		Log:    logrus.WithField("cmd", c.Command.Name),
		DB:     db,
		Config: config,
	}, nil
}

func importAction(c *cli.Context) error {
	ts, err := newTableSync(c)
	if err != nil {
		return err
	}
	counts, err := ts.Import(context.Background())
	if err != nil {
		logrus.WithError(err).Error("Import failed")
		return err
	}
	fmt.Printf("Imported %d positions and %d trades\n", counts.Positions, counts.Trades)
	return nil
}

func exportAction(c *cli.Context) error {
	ts, err := newTableSync(c)
	if err != nil {
		return err
	}
	counts, err := ts.Export(context.Background())
	if err != nil {
		logrus.WithError(err).Error("Export failed")
		return err
	}
	fmt.Printf("Exported %d positions and %d trades to %s\n", counts.Positions, counts.Trades, ts.Config.Dir)
	return nil
}

func summaryAction(c *cli.Context) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	ctx := context.Background()

	var account *string
	if a := c.String("account"); a != "" {
		account = &a
	}
	positions, err := repository.NewPositionRepository(db).Search(ctx, repository.PositionSearchOptions{Account: account})
	if err != nil {
		return err
	}
	trades, err := repository.NewTradeRepository(db).Search(ctx, repository.TradeSearchOptions{Account: account})
	if err != nil {
		return err
	}

	md := report.SummaryMarkdown(utils.Today(), positions, trades)
	if c.Bool("raw") {
		fmt.Print(md)
		return nil
	}
	out, err := report.Render(md, c.Int("width"))
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

func quotesAction(c *cli.Context) error {
	symbol := strings.ToUpper(strings.TrimSpace(c.String("symbol")))
	if symbol == "" {
		return cli.NewExitError("--symbol is required", 1)
	}

	client := connectors.NewMarketDataClient(connectors.GetConfig())
	ctx := context.Background()

	bars, err := client.FetchSeries(ctx, symbol, c.String("period"))
	if err != nil {
		return err
	}
	if resample := c.Duration("resample"); resample > 0 {
		if bars, err = connectors.Resample(bars, resample); err != nil {
			return err
		}
	}
	fmt.Printf("%-20s %12s %12s %12s %12s %14s\n", "Datetime", "Open", "High", "Low", "Close", "Volume")
	for _, bar := range bars {
		fmt.Printf("%-20s %12s %12s %12s %12s %14s\n",
			bar.Datetime.Format("2006-01-02 15:04"),
			bar.Open.StringFixed(2), bar.High.StringFixed(2), bar.Low.StringFixed(2), bar.Close.StringFixed(2),
			bar.Volume.String())
	}

	quote, err := client.LatestQuote(ctx, symbol)
	if err != nil {
		return err
	}
	fmt.Printf("\n%s last %s %s\n", quote.Symbol, quote.Price.StringFixed(2), quote.Currency)
	return nil
}

func tokenAction(c *cli.Context) error {
	token := strings.TrimSpace(c.Args().First())
	if token == "" {
		return cli.NewExitError("usage: stocktracker token <token>", 1)
	}
	hash, err := auth.HashToken(token)
	if err != nil {
		return err
	}
	fmt.Printf("API_TOKEN_HASH='%s'\n", hash)
	return nil
}
