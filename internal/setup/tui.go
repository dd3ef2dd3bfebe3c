package setup

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"github.com/user/papertrade/internal/entity"
	"github.com/user/papertrade/internal/services/account"
	"go.uber.org/zap"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	okStyle = lipgloss.NewStyle().
		Foreground(special).
		Bold(true)

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(subtle)
)

// RunTUI launches the interactive terminal trading session. It keeps asking
// for actions until the user quits; every entered string is converted to a
// typed ledger call and the result is rendered back as text.
func RunTUI(ctx context.Context, pricer account.Pricer, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	fmt.Print("\033[H\033[2J") // Clear screen
	fmt.Println(headerStyle.Render("PAPERTRADE"))
	fmt.Println(infoStyle.Render("A trading-simulation account. All money is imaginary.\n"))

	acct, err := createAccountForm(pricer, logger)
	if err != nil {
		return err
	}
	fmt.Println(okStyle.Render("Account created."))
	printSummary(ctx, acct)

	for {
		var action string
		err := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("What next?").
					Options(
						huh.NewOption("Summary", "summary"),
						huh.NewOption("Deposit funds", "deposit"),
						huh.NewOption("Withdraw funds", "withdraw"),
						huh.NewOption("Buy shares", "buy"),
						huh.NewOption("Sell shares", "sell"),
						huh.NewOption("Transactions", "transactions"),
						huh.NewOption("Quit", "quit"),
					).
					Value(&action),
			),
		).Run()
		if err != nil {
			return err
		}

		switch action {
		case "summary":
			printSummary(ctx, acct)
		case "deposit":
			amount, err := amountForm("Deposit amount")
			if err != nil {
				return err
			}
			report(acct.Deposit(amount), fmt.Sprintf("Successfully deposited $%s", amount.StringFixed(2)))
		case "withdraw":
			amount, err := amountForm("Withdrawal amount")
			if err != nil {
				return err
			}
			report(acct.Withdraw(amount), fmt.Sprintf("Successfully withdrew $%s", amount.StringFixed(2)))
		case "buy":
			symbol, quantity, err := tradeForm()
			if err != nil {
				return err
			}
			report(acct.BuyShares(ctx, symbol, quantity), fmt.Sprintf("Successfully bought %d shares of %s", quantity, symbol))
		case "sell":
			symbol, quantity, err := tradeForm()
			if err != nil {
				return err
			}
			report(acct.SellShares(ctx, symbol, quantity), fmt.Sprintf("Successfully sold %d shares of %s", quantity, symbol))
		case "transactions":
			printTransactions(acct)
		case "quit":
			fmt.Println(infoStyle.Render("Bye."))
			return nil
		}
	}
}

func createAccountForm(pricer account.Pricer, logger *zap.Logger) (*account.Account, error) {
	for {
		depositStr := "1000"
		err := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Initial deposit").
					Description("Must be a positive amount (e.g. 1000)").
					Value(&depositStr).
					Validate(validateAmount),
			),
		).Run()
		if err != nil {
			return nil, err
		}

		deposit, err := decimal.NewFromString(strings.TrimSpace(depositStr))
		if err != nil {
			fmt.Println(errStyle.Render("Error: " + err.Error()))
			continue
		}
		acct, err := account.New(deposit, pricer, logger)
		if err != nil {
			fmt.Println(errStyle.Render("Error: " + err.Error()))
			continue
		}
		return acct, nil
	}
}

func amountForm(title string) (decimal.Decimal, error) {
	var amountStr string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Value(&amountStr).
				Validate(validateAmount),
		),
	).Run()
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.NewFromString(strings.TrimSpace(amountStr))
}

func tradeForm() (string, int64, error) {
	var symbol, quantityStr string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Symbol").
				Description("Stock symbol (e.g. AAPL)").
				Value(&symbol).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("symbol cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Quantity").
				Description("Whole number of shares").
				Value(&quantityStr).
				Validate(func(s string) error {
					n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
					if err != nil {
						return fmt.Errorf("invalid quantity: must be a whole number")
					}
					if n <= 0 {
						return fmt.Errorf("quantity must be positive")
					}
					return nil
				}),
		),
	).Run()
	if err != nil {
		return "", 0, err
	}

	quantity, err := strconv.ParseInt(strings.TrimSpace(quantityStr), 10, 64)
	if err != nil {
		return "", 0, err
	}
	return strings.ToUpper(strings.TrimSpace(symbol)), quantity, nil
}

func validateAmount(s string) error {
	amount, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid amount")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("amount must be positive")
	}
	return nil
}

func report(err error, success string) {
	if err != nil {
		fmt.Println(errStyle.Render("Error: " + err.Error()))
		return
	}
	fmt.Println(okStyle.Render(success))
}

func printSummary(ctx context.Context, acct *account.Account) {
	summary, err := acct.Summary(ctx)
	if err != nil {
		fmt.Println(errStyle.Render("Error: " + err.Error()))
		return
	}

	var b strings.Builder
	b.WriteString("Account Summary\n")
	b.WriteString("--------------\n")
	fmt.Fprintf(&b, "Cash Balance: $%s\n", summary.Balance.StringFixed(2))
	fmt.Fprintf(&b, "Portfolio Value: $%s\n", summary.PortfolioValue.StringFixed(2))
	if summary.ProfitOrLoss.IsNegative() {
		fmt.Fprintf(&b, "Loss: $%s\n", summary.ProfitOrLoss.Neg().StringFixed(2))
	} else {
		fmt.Fprintf(&b, "Profit: $%s\n", summary.ProfitOrLoss.StringFixed(2))
	}
	b.WriteString("\nCurrent Holdings\n")
	b.WriteString("---------------\n")
	if len(summary.Holdings) == 0 {
		b.WriteString("No stock holdings.\n")
	}
	for _, line := range summary.Holdings {
		fmt.Fprintf(&b, "%s: %d shares at $%s = $%s\n",
			line.Symbol, line.Quantity, line.Price.StringFixed(2), line.Value.StringFixed(2))
	}
	fmt.Println(b.String())
}

func printTransactions(acct *account.Account) {
	var b strings.Builder
	b.WriteString("Transactions\n")
	b.WriteString("------------\n")
	for _, tx := range acct.Transactions() {
		fmt.Fprintf(&b, "%s  %-8s  $%s", tx.When().Format("2006-01-02 15:04:05"), tx.Kind(), tx.Amount().StringFixed(2))
		if trade, ok := tx.(entity.TradeTx); ok {
			fmt.Fprintf(&b, "  %dx%s @ $%s", trade.Quantity(), trade.Symbol(), trade.Price().StringFixed(2))
		}
		b.WriteString("\n")
	}
	fmt.Println(b.String())
}
