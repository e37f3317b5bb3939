package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// UIHandler serves the embedded live view page
type UIHandler struct{}

func NewUIHandler() *UIHandler {
	return &UIHandler{}
}

// Index serves the live view page
// @Summary Live view page
// @Description Operator page with the camera stream, status panel, recording toggle and door state
// @Tags ui
// @Produce html
// @Success 200 {string} string "HTML page"
// @Router / [get]
func (h *UIHandler) Index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(liveViewPage))
}

// liveViewPage is the single-file operator UI. Camera selection comes from
// the camera_id query parameter so the page needs no server-side templating.
const liveViewPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Security Camera</title>
<style>
  body { background: #1a1a1a; color: #e0e0e0; font-family: Arial, Helvetica, sans-serif; margin: 0; }
  .container { max-width: 720px; margin: 0 auto; padding: 16px; }
  h1 { font-size: 1.3em; margin: 8px 0; }
  #datetime { color: #888; font-size: 0.9em; margin-bottom: 12px; }
  .feed { width: 100%; background: #000; border: 1px solid #333; border-radius: 4px; }
  .panel { background: #242424; border: 1px solid #333; border-radius: 4px; padding: 12px; margin-top: 12px; }
  .row { display: flex; justify-content: space-between; padding: 4px 0; border-bottom: 1px solid #2e2e2e; }
  .row:last-child { border-bottom: none; }
  .label { color: #888; }
  .ok { color: #28a745; }
  .alert { color: #dc3545; }
  button { width: 100%; padding: 10px; margin-top: 12px; font-size: 1em; border: none; border-radius: 4px; cursor: pointer; background: #28a745; color: #fff; }
  button.recording { background: #dc3545; }
  button:disabled { background: #555; cursor: wait; }
</style>
</head>
<body>
<div class="container">
  <h1>Security Camera</h1>
  <div id="datetime"></div>
  <img class="feed" id="feed" alt="camera stream">
  <div class="panel">
    <div class="row"><span class="label">Camera</span><span id="camera"></span></div>
    <div class="row"><span class="label">Motion</span><span id="motion">-</span></div>
    <div class="row"><span class="label">Recording</span><span id="recording">-</span></div>
    <div class="row"><span class="label">CPU Temp</span><span id="cpu-temp">-</span></div>
    <div class="row"><span class="label">Uptime</span><span id="uptime">-</span></div>
    <div class="row"><span class="label">WiFi</span><span id="wifi">-</span></div>
    <div class="row"><span class="label">Door</span><span id="door">-</span></div>
  </div>
  <button id="record-btn" disabled>Start Recording</button>
</div>
<script>
(function () {
  var params = new URLSearchParams(window.location.search);
  var cameraID = params.get('camera_id') || 'camera1';
  var recording = false;
  var btn = document.getElementById('record-btn');

  document.getElementById('camera').textContent = cameraID;
  document.getElementById('feed').src = '/video_feed?camera_id=' + encodeURIComponent(cameraID);

  function updateDateTime() {
    document.getElementById('datetime').textContent = new Date().toLocaleString();
  }

  function renderStatus(data) {
    var motion = document.getElementById('motion');
    motion.textContent = data.motion_detected ? 'Detected' : 'None';
    motion.className = data.motion_detected ? 'alert' : 'ok';

    recording = !!data.recording;
    var rec = document.getElementById('recording');
    rec.textContent = recording ? 'Active' : 'Idle';
    rec.className = recording ? 'alert' : 'ok';

    document.getElementById('cpu-temp').textContent = data.cpu_temp || 'Unknown';
    document.getElementById('uptime').textContent = data.uptime || 'Unknown';

    var wifi = 'Unknown';
    if (data.wifi_signal_percent !== null && data.wifi_signal_percent !== undefined) {
      wifi = data.wifi_signal_percent + '% (' + (data.wifi_signal_quality || '?') + ')';
    }
    document.getElementById('wifi').textContent = wifi;

    btn.disabled = false;
    btn.textContent = recording ? 'Stop Recording' : 'Start Recording';
    btn.className = recording ? 'recording' : '';
  }

  function refreshStatus() {
    fetch('/status?camera_id=' + encodeURIComponent(cameraID))
      .then(function (r) { return r.json(); })
      .then(renderStatus)
      .catch(function () {});
  }

  function refreshDoor() {
    fetch('/door-status')
      .then(function (r) { return r.json(); })
      .then(function (data) {
        var door = document.getElementById('door');
        if (!data.door_state) {
          door.textContent = 'No sensor';
          door.className = 'label';
          return;
        }
        var ago = data.time_ago == null ? '' : ' (' + Math.round(data.time_ago) + 's ago)';
        door.textContent = data.door_state + ago;
        door.className = data.door_state === 'open' ? 'alert' : 'ok';
      })
      .catch(function () {});
  }

  btn.addEventListener('click', function () {
    var path = recording ? '/stop-recording' : '/start-recording';
    btn.disabled = true;
    fetch(path + '?camera_id=' + encodeURIComponent(cameraID), { method: 'POST' })
      .then(function () { setTimeout(refreshStatus, 1000); })
      .catch(function () { btn.disabled = false; });
  });

  updateDateTime();
  setInterval(updateDateTime, 1000);
  refreshStatus();
  refreshDoor();
  setInterval(refreshStatus, 5000);
  setInterval(refreshDoor, 5000);
})();
</script>
</body>
</html>`
