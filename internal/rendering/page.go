package rendering

import "html/template"

var pageTemplate = template.Must(template.New("chart").Parse(chartPage))

// chartPage is the single chart document. The drawing script is plain
// canvas 2D with no external assets, so the page renders identically
// from disk, over file://, or embedded in the dashboard.
const chartPage = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  html, body { margin: 0; padding: 0; background: #ffffff; }
  canvas { display: block; }
</style>
</head>
<body>
<canvas id="chart" width="{{.Width}}" height="{{.Height}}"></canvas>
<script>
const spec = {{.Spec}};
const canvas = document.getElementById("chart");
const ctx = canvas.getContext("2d");
const W = canvas.width, H = canvas.height;
const palette = ["#3b82c4", "#2f9e62", "#e3a93c", "#cc4b3d", "#8a93a6"];
const ink = "#1f2633", faded = "#5c6470", grid = "#d5dae2";

function fmt(v) {
  const rounded = Math.round(v * 10) / 10;
  const s = Math.abs(v) >= 1000 ? Math.round(v).toLocaleString("en-US") : String(rounded);
  return s + (spec.unit || "");
}

function maxValue() {
  let max = 0;
  for (const s of spec.series) {
    for (const v of s.values) {
      if (v > max) max = v;
    }
  }
  return max > 0 ? max : 1;
}

function barColor(s, i, j) {
  if (s.colors && s.colors[i]) return s.colors[i];
  return s.color || palette[j % palette.length];
}

function drawAxis(left, right, top, bottom, max) {
  ctx.strokeStyle = grid;
  ctx.lineWidth = 1;
  ctx.fillStyle = faded;
  ctx.font = "13px Arial";
  ctx.textAlign = "right";
  const ticks = 4;
  for (let i = 0; i <= ticks; i++) {
    const y = bottom - (bottom - top) * (i / ticks);
    ctx.beginPath();
    ctx.moveTo(left, y);
    ctx.lineTo(right, y);
    ctx.stroke();
    ctx.fillText(fmt((max / ticks) * i), left - 10, y + 4);
  }
}

function drawLegend(x, y) {
  ctx.font = "14px Arial";
  ctx.textAlign = "left";
  let cx = x;
  spec.series.forEach((s, j) => {
    ctx.fillStyle = s.color || palette[j % palette.length];
    ctx.fillRect(cx, y - 11, 14, 14);
    ctx.fillStyle = ink;
    ctx.fillText(s.name || "", cx + 20, y + 1);
    cx += 20 + ctx.measureText(s.name || "").width + 28;
  });
}

function drawHBars() {
  const s = spec.series[0];
  const left = 250, right = W - 96, top = 116, bottom = H - 36;
  const max = maxValue();
  const step = (bottom - top) / spec.labels.length;
  const barH = Math.min(34, step * 0.62);
  ctx.font = "15px Arial";
  spec.labels.forEach((label, i) => {
    const y = top + step * i + step / 2;
    const w = Math.max((right - left) * (s.values[i] / max), 2);
    ctx.fillStyle = barColor(s, i, 0);
    ctx.fillRect(left, y - barH / 2, w, barH);
    ctx.fillStyle = ink;
    ctx.textAlign = "right";
    ctx.fillText(label, left - 12, y + 5);
    ctx.textAlign = "left";
    ctx.fillText(fmt(s.values[i]), left + w + 8, y + 5);
  });
}

function drawBars() {
  const left = 84, right = W - 48, top = 116, bottom = H - 84;
  const max = maxValue();
  drawAxis(left, right, top, bottom, max);
  const groupW = (right - left) / spec.labels.length;
  const barW = Math.min(56, (groupW * 0.7) / spec.series.length);
  spec.labels.forEach((label, i) => {
    const center = left + groupW * i + groupW / 2;
    const start = center - (barW * spec.series.length) / 2;
    spec.series.forEach((s, j) => {
      const h = (bottom - top) * (s.values[i] / max);
      const x = start + barW * j;
      ctx.fillStyle = barColor(s, i, j);
      ctx.fillRect(x, bottom - h, barW - 2, Math.max(h, 1));
      ctx.fillStyle = faded;
      ctx.font = "12px Arial";
      ctx.textAlign = "center";
      ctx.fillText(fmt(s.values[i]), x + barW / 2 - 1, bottom - h - 6);
    });
    ctx.fillStyle = ink;
    ctx.font = "14px Arial";
    ctx.textAlign = "center";
    ctx.fillText(label, center, bottom + 24);
  });
  if (spec.series.length > 1) drawLegend(left, 100);
}

function drawLines() {
  const left = 84, right = W - 48, top = 116, bottom = H - 84;
  const max = maxValue();
  drawAxis(left, right, top, bottom, max);
  const step = spec.labels.length > 1 ? (right - left) / (spec.labels.length - 1) : 0;
  ctx.fillStyle = ink;
  ctx.font = "14px Arial";
  ctx.textAlign = "center";
  spec.labels.forEach((label, i) => {
    ctx.fillText(label, left + step * i, bottom + 24);
  });
  spec.series.forEach((s, j) => {
    const color = s.color || palette[j % palette.length];
    ctx.strokeStyle = color;
    ctx.lineWidth = 3;
    ctx.beginPath();
    s.values.forEach((v, i) => {
      const x = left + step * i;
      const y = bottom - (bottom - top) * (v / max);
      if (i === 0) ctx.moveTo(x, y);
      else ctx.lineTo(x, y);
    });
    ctx.stroke();
    s.values.forEach((v, i) => {
      const x = left + step * i;
      const y = bottom - (bottom - top) * (v / max);
      ctx.fillStyle = color;
      ctx.beginPath();
      ctx.arc(x, y, 5, 0, Math.PI * 2);
      ctx.fill();
      ctx.fillStyle = faded;
      ctx.font = "12px Arial";
      ctx.fillText(fmt(v), x, y - 12);
    });
  });
  if (spec.series.length > 1) drawLegend(left, 100);
}

ctx.fillStyle = "#ffffff";
ctx.fillRect(0, 0, W, H);
ctx.fillStyle = ink;
ctx.font = "600 28px Arial";
ctx.textAlign = "left";
ctx.fillText(spec.title, 48, 54);
if (spec.subtitle) {
  ctx.fillStyle = faded;
  ctx.font = "16px Arial";
  ctx.fillText(spec.subtitle, 48, 82);
}

if (!spec.labels || spec.labels.length === 0 || spec.series.length === 0) {
  ctx.fillStyle = faded;
  ctx.font = "20px Arial";
  ctx.textAlign = "center";
  ctx.fillText("no data available", W / 2, H / 2);
} else if (spec.kind === "hbars") {
  drawHBars();
} else if (spec.kind === "lines") {
  drawLines();
} else {
  drawBars();
}
</script>
</body>
</html>
`
