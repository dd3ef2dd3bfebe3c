package web

// indexHTML is the single-page front end. It only marshals text inputs into
// API calls and renders the returned messages; all rules live in the ledger.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>papertrade</title>
<style>
  body { font-family: system-ui, sans-serif; max-width: 720px; margin: 2rem auto; padding: 0 1rem; background: #111; color: #eee; }
  h1 { color: #73F59F; }
  fieldset { border: 1px solid #383838; margin-bottom: 1rem; }
  input { background: #222; color: #eee; border: 1px solid #444; padding: 0.3rem; }
  button { background: #7D56F4; color: #fff; border: none; padding: 0.4rem 0.8rem; cursor: pointer; }
  pre { background: #1a1a1a; padding: 1rem; white-space: pre-wrap; }
  .error { color: #f66; }
</style>
</head>
<body>
<h1>papertrade</h1>

<fieldset>
  <legend>Account</legend>
  <input id="create-amount" placeholder="initial deposit">
  <button onclick="cashOp('/api/account','create-amount')">Create Account</button>
</fieldset>

<fieldset>
  <legend>Cash</legend>
  <input id="cash-amount" placeholder="amount">
  <button onclick="cashOp('/api/deposit','cash-amount')">Deposit</button>
  <button onclick="cashOp('/api/withdraw','cash-amount')">Withdraw</button>
</fieldset>

<fieldset>
  <legend>Trade</legend>
  <input id="trade-symbol" placeholder="symbol" size="8">
  <input id="trade-qty" placeholder="quantity" size="8">
  <button onclick="tradeOp('/api/buy')">Buy</button>
  <button onclick="tradeOp('/api/sell')">Sell</button>
</fieldset>

<p id="status"></p>
<pre id="summary">No account yet.</pre>
<pre id="transactions"></pre>

<script>
function show(msg, isError) {
  const el = document.getElementById('status');
  el.textContent = msg;
  el.className = isError ? 'error' : '';
}

async function post(url, body) {
  const res = await fetch(url, { method: 'POST', headers: {'Content-Type': 'application/json'}, body: JSON.stringify(body) });
  const data = await res.json();
  if (!res.ok) throw new Error(data.error);
  return data;
}

async function cashOp(url, inputId) {
  try {
    const data = await post(url, { amount: document.getElementById(inputId).value });
    show(data.message, false);
    refresh();
  } catch (e) { show('Error: ' + e.message, true); }
}

async function tradeOp(url) {
  try {
    const data = await post(url, {
      symbol: document.getElementById('trade-symbol').value,
      quantity: parseInt(document.getElementById('trade-qty').value, 10),
    });
    show(data.message, false);
    refresh();
  } catch (e) { show('Error: ' + e.message, true); }
}

async function refresh() {
  try {
    const res = await fetch('/api/summary');
    if (!res.ok) return;
    const s = await res.json();
    let text = 'Cash Balance: $' + s.balance + '\n' +
               'Portfolio Value: $' + s.portfolio_value + '\n' +
               'Profit/Loss: $' + s.profit_or_loss + '\n\nHoldings:\n';
    if (s.holdings.length === 0) text += '  (none)\n';
    for (const h of s.holdings) {
      text += '  ' + h.symbol + ': ' + h.quantity + ' shares at $' + h.price + ' = $' + h.value + '\n';
    }
    document.getElementById('summary').textContent = text;

    const txRes = await fetch('/api/transactions');
    if (!txRes.ok) return;
    const txs = await txRes.json();
    let log = 'Transactions:\n';
    for (const t of txs) {
      log += '  ' + t.ts + ' ' + t.kind + ' $' + t.amount;
      if (t.symbol) log += ' ' + t.quantity + 'x' + t.symbol + ' @ $' + t.price;
      log += '\n';
    }
    document.getElementById('transactions').textContent = log;
  } catch (e) { /* account may not exist yet */ }
}

const stream = new EventSource('/balance/stream');
stream.addEventListener('balance', () => refresh());
refresh();
</script>
</body>
</html>
`
