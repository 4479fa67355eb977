// Package models defines the core domain models for SuiSplit.
//
// # Models
//
//   - Expense: a shared cost fronted by one payer and split equally among participants
//   - Group: a ledger of expenses and settlements (an on-chain ExpenseGroup or a local group)
//   - Settlement: a payment from a debtor to a creditor that reduces both balances
//
// Participants are identified by wallet address strings. Balances are never stored;
// they are derived from a group's expenses by the calculator package every time.
//
// # Design Principles
//
//  1. **Values, not references**: models are plain structs passed by value; nothing here holds pointers to
//     other models
//  2. **Validated at the boundary**: loosely typed ledger records become Expense values in the ledger package
//     before any balance math runs
//  3. **Amounts in SUI**: on-chain MIST sub-units are converted before they reach these types
package models
