package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"runtime"
	"strconv"

	"github.com/antonymarion/forkQGroundControl/internal/camera"
	"github.com/antonymarion/forkQGroundControl/internal/cache"
	"github.com/antonymarion/forkQGroundControl/internal/dispatcher"
	"github.com/antonymarion/forkQGroundControl/internal/fleet"
	"github.com/antonymarion/forkQGroundControl/internal/logging"
	"github.com/antonymarion/forkQGroundControl/internal/wire"
	"github.com/antonymarion/forkQGroundControl/pkg/core"
)

// Instruction names carried in the request "instruction" field. These
// are the exact strings the frontend sends and must not change.
const (
	InstrOpenStream          = "OPEN_STREAM"
	InstrStopStream          = "STOP_STREAM"
	InstrResetGimbal         = "RESET_GIMBAL"
	InstrMoveGimbal          = "MOVE_GIMBAL"
	InstrGetCameras          = "GET_CAMERAS"
	InstrSetCamera           = "SET_CAMERA"
	InstrSetCameraIntrinsics = "SET_CAMERA_INTRINSICS"
	InstrGetCamera           = "GET_CAMERA"
	InstrZoomCamera          = "ZOOM_CAMERA"
	InstrTakePhoto           = "TAKE_PHOTO"
	InstrStartRecording      = "START_RECORDING"
	InstrStopRecording       = "STOP_RECORDING"
	InstrSetServo            = "MAV_CMD_DO_SET_SERVO"
	InstrGetPosition         = "GET_POSITION"
	InstrGetRemotePilot      = "GET_REMOTE_PILOT"
	InstrPing                = "PING"
)

// reservedServoOutputs are the PWM outputs driving the motors on the
// stock airframe. Frontend servo commands must never address them.
var reservedServoOutputs = map[int]bool{
	1: true, 2: true, 3: true, 4: true, 13: true, 14: true,
}

// StreamController is the media pipeline surface the handlers drive.
// A *stream.Manager satisfies it.
type StreamController interface {
	StartStream(serial string) (string, error)
	StopStream(serial string) error
	IsStreaming(serial string) bool
	StreamURL(serial string) string
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Fleet        *fleet.Fleet
	Stream       StreamController
	PilotCache   *cache.PilotCache
	FetchPilot   func(serial string) (core.RemotePilot, error)
	LogManager   *logging.SlogManager
	Serial       string
	BuildVersion string
	Simulated    bool
}

// Service provides handler methods for frontend bridge instructions
type Service struct {
	deps         Dependencies
	writeLogFunc func(functionName, data, level string)
}

// NewService creates a new handler service
func NewService(deps Dependencies) *Service {
	s := &Service{deps: deps}
	// Default writeLog function uses the logging manager
	s.writeLogFunc = func(functionName, data, level string) {
		if deps.LogManager != nil {
			deps.LogManager.WriteLog(functionName, data, level)
		}
	}
	return s
}

func (s *Service) writeLog(functionName, data, level string) {
	s.writeLogFunc(functionName, data, level)
}

// Register binds every instruction on the dispatcher. All handlers run
// synchronously: the bridge folds the returned fields into the response
// it publishes, so results cannot be deferred to a queue.
func (s *Service) Register(d *dispatcher.Dispatcher) {
	bindings := []struct {
		instruction string
		handler     dispatcher.HandlerFunc
	}{
		{InstrOpenStream, s.OpenStream},
		{InstrStopStream, s.StopStream},
		{InstrResetGimbal, s.ResetGimbal},
		{InstrMoveGimbal, s.MoveGimbal},
		{InstrGetCameras, s.GetCameras},
		{InstrSetCamera, s.SetCamera},
		{InstrSetCameraIntrinsics, s.SetCameraIntrinsics},
		{InstrGetCamera, s.GetCamera},
		{InstrZoomCamera, s.ZoomCamera},
		{InstrTakePhoto, s.TakePhoto},
		{InstrStartRecording, s.StartRecording},
		{InstrStopRecording, s.StopRecording},
		{InstrSetServo, s.SetServo},
		{InstrGetPosition, s.GetPosition},
		{InstrGetRemotePilot, s.GetRemotePilot},
		{InstrPing, s.Ping},
	}
	for _, b := range bindings {
		d.Register(b.instruction, b.handler, dispatcher.Logged())
	}
}

// OpenStream starts the media pipeline and reports the RTMP publish
// point to the frontend.
func (s *Service) OpenStream(e dispatcher.Event) (any, error) {
	if s.deps.Stream == nil {
		return nil, errors.New("no stream pipeline configured")
	}
	url, err := s.deps.Stream.StartStream(e.Serial)
	if err != nil {
		return nil, fmt.Errorf("failed to start stream: %w", err)
	}
	s.writeLog(InstrOpenStream, fmt.Sprintf("Streaming to %s", url), "INFO")
	return map[string]any{"url": url}, nil
}

// StopStream tears the pipeline down. The frontend expects the url
// field reset to the literal string "null".
func (s *Service) StopStream(e dispatcher.Event) (any, error) {
	if s.deps.Stream == nil {
		return nil, errors.New("no stream pipeline configured")
	}
	if err := s.deps.Stream.StopStream(e.Serial); err != nil {
		return nil, fmt.Errorf("failed to stop stream: %w", err)
	}
	s.writeLog(InstrStopStream, "Streaming stopped", "INFO")
	return map[string]any{"url": "null"}, nil
}

// ResetGimbal recenters every axis of the active gimbal.
func (s *Service) ResetGimbal(e dispatcher.Event) (any, error) {
	activeGimbal := s.deps.Fleet.ActiveGimbal()
	if activeGimbal == nil {
		return nil, errors.New("no active gimbal")
	}
	if err := activeGimbal.Reset(); err != nil {
		return nil, fmt.Errorf("failed to reset gimbal: %w", err)
	}
	return nil, nil
}

// MoveGimbal slews one axis of the active gimbal to an absolute angle.
func (s *Service) MoveGimbal(e dispatcher.Event) (any, error) {
	var params struct {
		Axis  string `json:"axis"`
		Value any    `json:"value"`
	}
	if err := json.Unmarshal(e.Payload, &params); err != nil {
		return nil, fmt.Errorf("failed to parse gimbal payload: %w", err)
	}
	activeGimbal := s.deps.Fleet.ActiveGimbal()
	if activeGimbal == nil {
		return nil, errors.New("no active gimbal")
	}
	deg, err := toFloat(params.Value)
	if err != nil {
		return nil, fmt.Errorf("invalid gimbal value: %w", err)
	}
	return nil, activeGimbal.Move(params.Axis, deg)
}

// GetCameras lists the cameras of the active vehicle for the frontend
// camera picker.
func (s *Service) GetCameras(e dispatcher.Event) (any, error) {
	activeVehicle := s.deps.Fleet.ActiveVehicle()
	if activeVehicle == nil {
		return nil, errors.New("no active vehicle")
	}
	systemID := activeVehicle.SystemID()
	hasGimbal := len(s.deps.Fleet.Gimbals(systemID)) > 0
	cameraList := make([]core.CameraInfo, 0)
	for i, cam := range s.deps.Fleet.Cameras(systemID) {
		cameraList = append(cameraList, core.CameraInfo{
			Index:     i,
			Name:      cam.Model(),
			Zoom:      cam.ZoomLevel(),
			Recording: cam.Recording(),
			HasGimbal: hasGimbal,
		})
	}
	return map[string]any{"availableCameraListData": cameraList}, nil
}

// SetCamera is accepted for compatibility. Camera selection is owned by
// the fleet, so there is nothing to apply.
func (s *Service) SetCamera(e dispatcher.Event) (any, error) {
	return nil, nil
}

// SetCameraIntrinsics is accepted for compatibility. Exposure values
// come from the device profile and are read-only over the bridge.
func (s *Service) SetCameraIntrinsics(e dispatcher.Event) (any, error) {
	return nil, nil
}

// GetCamera reports the capability set of the active camera and gimbal
// so the frontend can bound its controls.
func (s *Service) GetCamera(e dispatcher.Event) (any, error) {
	activeCamera := s.deps.Fleet.ActiveCamera()
	if activeCamera == nil {
		return nil, errors.New("no active camera")
	}
	result := map[string]any{"hasZoom": activeCamera.HasZoom()}
	if intr := activeCamera.Intrinsics(); intr != (camera.Intrinsics{}) {
		result["intrinsics"] = intr
	}
	if activeGimbal := s.deps.Fleet.ActiveGimbal(); activeGimbal != nil {
		pitch, yaw, roll := activeGimbal.Capabilities()
		result["gimbalRange"] = map[string]any{
			"pitch": pitch,
			"yaw":   yaw,
			"roll":  roll,
		}
	}
	return result, nil
}

// ZoomCamera moves the active camera zoom to an absolute level.
func (s *Service) ZoomCamera(e dispatcher.Event) (any, error) {
	var params struct {
		ZoomValue any `json:"zoomValue"`
	}
	if err := json.Unmarshal(e.Payload, &params); err != nil {
		return nil, fmt.Errorf("failed to parse zoom payload: %w", err)
	}
	activeCamera := s.deps.Fleet.ActiveCamera()
	if activeCamera == nil {
		return nil, errors.New("no active camera")
	}
	level, err := toFloat(params.ZoomValue)
	if err != nil {
		return nil, fmt.Errorf("invalid zoom value: %w", err)
	}
	return nil, activeCamera.Zoom(float32(level))
}

// TakePhoto switches the active camera to photo mode and triggers a
// single capture.
func (s *Service) TakePhoto(e dispatcher.Event) (any, error) {
	activeCamera := s.deps.Fleet.ActiveCamera()
	if activeCamera == nil {
		return nil, errors.New("no active camera")
	}
	if err := activeCamera.SetMode(camera.ModePhoto); err != nil {
		return nil, fmt.Errorf("failed to switch to photo mode: %w", err)
	}
	return nil, activeCamera.TakePhoto()
}

// StartRecording switches the active camera to video mode and starts
// the recording.
func (s *Service) StartRecording(e dispatcher.Event) (any, error) {
	activeCamera := s.deps.Fleet.ActiveCamera()
	if activeCamera == nil {
		return nil, errors.New("no active camera")
	}
	if err := activeCamera.SetMode(camera.ModeVideo); err != nil {
		return nil, fmt.Errorf("failed to switch to video mode: %w", err)
	}
	return nil, activeCamera.StartRecording()
}

// StopRecording ends the running video capture.
func (s *Service) StopRecording(e dispatcher.Event) (any, error) {
	activeCamera := s.deps.Fleet.ActiveCamera()
	if activeCamera == nil {
		return nil, errors.New("no active camera")
	}
	return nil, activeCamera.StopRecording()
}

// SetServo drives one PWM output on the active vehicle.
func (s *Service) SetServo(e dispatcher.Event) (any, error) {
	var params struct {
		Param1 any `json:"param1"`
		Param2 any `json:"param2"`
	}
	if err := json.Unmarshal(e.Payload, &params); err != nil {
		return nil, fmt.Errorf("failed to parse servo payload: %w", err)
	}
	servoID, err := toFloat(params.Param1)
	if err != nil {
		return nil, fmt.Errorf("invalid param1: %w", err)
	}
	pwm, err := toFloat(params.Param2)
	if err != nil {
		return nil, fmt.Errorf("invalid param2: %w", err)
	}
	if reservedServoOutputs[int(servoID)] {
		s.writeLog(InstrSetServo, fmt.Sprintf("Rejected command on motor output %d", int(servoID)), "ERROR")
		return nil, fmt.Errorf("servo output %d is reserved for motors", int(servoID))
	}
	activeVehicle := s.deps.Fleet.ActiveVehicle()
	if activeVehicle == nil {
		return nil, errors.New("no active vehicle")
	}
	return nil, activeVehicle.ExecuteCommandLong(wire.CmdDoSetServo, 0,
		float32(servoID), float32(pwm), 0, 0, 0, 0, 0, wire.CompIDAll)
}

// GetPosition answers an on-demand query with the same payload the
// periodic position publisher sends.
func (s *Service) GetPosition(e dispatcher.Event) (any, error) {
	payload, err := s.PositionPayload()
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// GetRemotePilot answers an on-demand query with the operator identity.
func (s *Service) GetRemotePilot(e dispatcher.Event) (any, error) {
	payload, err := s.RemotePilotPayload()
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// Ping answers a liveness probe from the frontend.
func (s *Service) Ping(e dispatcher.Event) (any, error) {
	return map[string]any{"status": "OK"}, nil
}

// PositionPayload assembles the station snapshot published on the
// position topic and returned for GET_POSITION.
func (s *Service) PositionPayload() (map[string]any, error) {
	activeVehicle := s.deps.Fleet.ActiveVehicle()
	if activeVehicle == nil {
		return nil, errors.New("no active vehicle")
	}
	snap := activeVehicle.Snapshot()

	pilot, err := s.remotePilot()
	if err != nil {
		s.writeLog("positionPayload", fmt.Sprintf("Remote pilot unavailable: %v", err), "WARN")
	}

	isStreaming := false
	rtmpURL := ""
	if s.deps.Stream != nil {
		isStreaming = s.deps.Stream.IsStreaming(s.deps.Serial)
		rtmpURL = s.deps.Stream.StreamURL(s.deps.Serial)
	}

	payload := map[string]any{
		"registrationNumber":     pilot.RegistrationNumber,
		"emailRemotePilot":       pilot.Email,
		"isStreaming":            isStreaming,
		"system":                 autopilotName(snap.Autopilot),
		"systemVersion":          "V1",
		"simulated":              s.deps.Simulated,
		"systemOS":               runtime.GOOS,
		"productType":            vehicleTypeName(snap.Type),
		"rtmpUrl":                rtmpURL,
		"latitude":               snap.Position.Lat,
		"longitude":              snap.Position.Lon,
		"altitude":               snap.Position.Alt,
		"isFlying":               snap.Flying,
		"gpsSatelliteCount":      snap.Satellites,
		"firmwareVersionUav":     "",
		"firmwareVersion":        s.deps.BuildVersion,
		"velocity":               snap.Airspeed,
		"batteryPowerPercentUav": int(snap.Battery.ChargeLevel),
	}

	if activeCamera := s.deps.Fleet.ActiveCamera(); activeCamera != nil {
		payload["hasCamera"] = true
		payload["sensorName"] = activeCamera.Model()
		payload["hasZoom"] = activeCamera.HasZoom()
		// Cameras without declared exposure values publish no
		// intrinsics block.
		if intr := activeCamera.Intrinsics(); intr != (camera.Intrinsics{}) {
			payload["intrinsics"] = intr
		}
	} else {
		payload["hasCamera"] = false
	}

	if activeGimbal := s.deps.Fleet.ActiveGimbal(); activeGimbal != nil {
		pitch, yaw, roll := activeGimbal.Attitude()
		payload["hasGimbal"] = true
		payload["gimbal"] = map[string]any{
			// The frontend expects the literal string "null" here.
			"KeyGimbalReset": "null",
			"attitude": core.GimbalState{
				Pitch: pitch,
				Yaw:   normalizeHeading(snap.HeadingDeg + yaw),
				Roll:  roll,
			},
			"keyYawRelativeToAircraftHeading": yaw,
		}
	} else {
		payload["hasGimbal"] = false
	}

	return payload, nil
}

// RemotePilotPayload is the identity snapshot published on the remote
// pilot topic.
func (s *Service) RemotePilotPayload() (map[string]any, error) {
	pilot, err := s.remotePilot()
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"email":              pilot.Email,
		"registrationNumber": pilot.RegistrationNumber,
	}, nil
}

// remotePilot resolves the operator identity, cache first.
func (s *Service) remotePilot() (core.RemotePilot, error) {
	if s.deps.PilotCache != nil {
		if pilot, ok := s.deps.PilotCache.Get(s.deps.Serial); ok {
			return pilot, nil
		}
	}
	if s.deps.FetchPilot == nil {
		return core.RemotePilot{}, errors.New("no remote pilot source configured")
	}
	pilot, err := s.deps.FetchPilot(s.deps.Serial)
	if err != nil {
		return core.RemotePilot{}, fmt.Errorf("failed to fetch remote pilot: %w", err)
	}
	if s.deps.PilotCache != nil {
		s.deps.PilotCache.Set(s.deps.Serial, pilot)
	}
	return pilot, nil
}

// toFloat coerces a decoded payload field to float64. The frontend is
// not consistent about numeric types: gimbal angles arrive as JSON
// strings, zoom and servo parameters as numbers.
func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid numeric value %q", n)
		}
		return f, nil
	case json.Number:
		return n.Float64()
	case nil:
		return 0, errors.New("missing numeric value")
	default:
		return 0, fmt.Errorf("unsupported numeric type %T", v)
	}
}

// autopilotName is the firmware family label the frontend displays.
func autopilotName(autopilot uint8) string {
	switch autopilot {
	case wire.AutopilotPX4, wire.AutopilotPixhawk:
		return "PX4 Pro"
	case wire.AutopilotArdupilotMega:
		return "ArduPilot"
	default:
		return "MAVLink Generic"
	}
}

// vehicleTypeName is the airframe class label the frontend displays.
func vehicleTypeName(vehicleType uint8) string {
	switch vehicleType {
	case wire.TypeFixedWing:
		return "Fixed Wing"
	case wire.TypeQuadrotor, wire.TypeCoaxial, wire.TypeHelicopter,
		wire.TypeHexarotor, wire.TypeOctorotor:
		return "Multi-Rotor"
	case wire.TypeGCS:
		return "Ground Station"
	default:
		return "Unknown"
	}
}

// normalizeHeading wraps a heading into [0, 360).
func normalizeHeading(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}
