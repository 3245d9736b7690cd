package dashboard

// indexHTML is a minimal single page client over the JSON API. It keeps the
// dashboard self contained, no static file directory to deploy.
const indexHTML = `<!DOCTYPE html>
<html lang="de">
<head>
<meta charset="utf-8">
<title>3. Liga xG Dashboard</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem; background: #fafafa; color: #222; }
h1 { font-size: 1.4rem; }
select { margin-right: 1rem; padding: 0.3rem; }
table { border-collapse: collapse; margin-top: 1rem; background: #fff; }
th, td { border: 1px solid #ddd; padding: 0.35rem 0.6rem; text-align: right; font-size: 0.85rem; }
th:first-child, td:first-child { text-align: left; }
th { background: #2d5a27; color: #fff; position: sticky; top: 0; }
tr:nth-child(even) { background: #f3f6f3; }
td:last-child { font-weight: bold; }
.error { color: #a00; margin-top: 1rem; }
</style>
</head>
<body>
<h1>3. Liga Saison-Tabellen</h1>
<div>
  <select id="source"></select>
  <select id="metric"></select>
  <button onclick="loadTable()">Laden</button>
</div>
<div id="out"></div>
<script>
async function loadSources() {
  const resp = await fetch('/api/sources');
  const data = await resp.json();
  const sourceSel = document.getElementById('source');
  const metricSel = document.getElementById('metric');
  sourceSel.innerHTML = '';
  (data.sources || []).forEach(s => {
    const opt = document.createElement('option');
    opt.value = s.name;
    opt.textContent = s.name;
    sourceSel.appendChild(opt);
  });
  ['xP', 'xG', 'Points'].forEach(m => {
    const opt = document.createElement('option');
    opt.value = m.toLowerCase();
    opt.textContent = m;
    metricSel.appendChild(opt);
  });
  if (sourceSel.options.length > 0) loadTable();
}
async function loadTable() {
  const source = document.getElementById('source').value;
  const metric = document.getElementById('metric').value;
  const out = document.getElementById('out');
  const resp = await fetch('/api/season/' + source + '/' + metric);
  if (!resp.ok) {
    out.innerHTML = '<p class="error">' + await resp.text() + '</p>';
    return;
  }
  const data = await resp.json();
  let html = '<table><tr>';
  data.columns.forEach(c => html += '<th>' + c + '</th>');
  html += '</tr>';
  data.rows.forEach(row => {
    html += '<tr>';
    data.columns.forEach(c => html += '<td>' + (row[c] || '') + '</td>');
    html += '</tr>';
  });
  html += '</table>';
  out.innerHTML = html;
}
loadSources();
</script>
</body>
</html>
`
