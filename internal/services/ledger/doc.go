/*
Package ledger implements double-entry posting over ledger accounts.

A posting takes two or more movement lines that must balance (total debits
equal total credits), locks every referenced account in ascending id order
inside one database transaction, re-reads balances under lock, rejects any
line that would drive an asset account negative, and commits the journal
entry, its lines and all balance updates atomically. The ascending lock
order is the deadlock-avoidance invariant: overlapping postings always
request locks in the same relative order.

Sign convention: a DEBIT increases ASSET and EXPENSE balances and decreases
LIABILITY, EQUITY and REVENUE balances; a CREDIT is the inverse. The same
convention applies to every transaction type.
*/
package ledger
