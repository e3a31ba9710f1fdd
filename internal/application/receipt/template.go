package receipt

// leadReceiptTemplate is the built-in A4 receipt layout. It renders with
// the template engine func map, so money and dates come out formatted.
const leadReceiptTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: 'Helvetica Neue', Arial, sans-serif; color: #1a1a1a; margin: 0; padding: 24px; font-size: 13px; }
  .header { display: flex; justify-content: space-between; border-bottom: 2px solid #1a1a1a; padding-bottom: 12px; }
  .header h1 { font-size: 20px; margin: 0; }
  .header .company { font-size: 14px; font-weight: 600; text-align: right; }
  .meta { margin: 16px 0; }
  .meta td { padding: 2px 16px 2px 0; }
  .meta .label { color: #666; }
  table.items { width: 100%; border-collapse: collapse; margin-top: 8px; }
  table.items th { text-align: left; border-bottom: 1px solid #999; padding: 6px 8px; font-size: 12px; text-transform: uppercase; color: #666; }
  table.items td { padding: 8px; border-bottom: 1px solid #e0e0e0; }
  table.items .num { text-align: right; }
  .total-row td { font-weight: 700; border-bottom: none; border-top: 2px solid #1a1a1a; }
  .customer { margin-top: 24px; }
  .customer h2 { font-size: 14px; margin-bottom: 6px; }
  .customer p { margin: 2px 0; color: #333; }
  .footer { margin-top: 40px; font-size: 11px; color: #999; text-align: center; }
</style>
</head>
<body>
  <div class="header">
    <h1>Order Receipt</h1>
    <div class="company">{{ .CompanyName }}</div>
  </div>

  <table class="meta">
    <tr><td class="label">Receipt No.</td><td>{{ .Lead.Number }}</td></tr>
    <tr><td class="label">Date</td><td>{{ formatDate .Lead.CreatedAt }}</td></tr>
    <tr><td class="label">Status</td><td>{{ statusText (printf "%s" .Lead.Status) }}</td></tr>
  </table>

  <table class="items">
    <thead>
      <tr>
        <th>SKU</th>
        <th>Product</th>
        <th class="num">Qty</th>
        <th class="num">Unit Price</th>
        <th class="num">Amount</th>
      </tr>
    </thead>
    <tbody>
      <tr>
        <td>{{ .Lead.ProductSKU }}</td>
        <td>{{ .Lead.ProductName }}</td>
        <td class="num">{{ .Lead.Quantity }}</td>
        <td class="num">{{ formatMoney .Lead.UnitPrice }}</td>
        <td class="num">{{ formatMoney .Lead.Total }}</td>
      </tr>
      <tr class="total-row">
        <td colspan="4">Total</td>
        <td class="num">{{ formatMoney .Lead.Total }}</td>
      </tr>
    </tbody>
  </table>

  <div class="customer">
    <h2>Customer</h2>
    <p>{{ .Lead.CustomerName }}</p>
    <p>{{ .Lead.CustomerPhone }}</p>
    <p>{{ .Lead.Country }}{{ if .Lead.City }}, {{ .Lead.City }}{{ end }}</p>
    {{ if .Lead.Address }}<p>{{ .Lead.Address }}</p>{{ end }}
  </div>

  <div class="footer">Generated {{ formatDateTime now }}</div>
</body>
</html>`
