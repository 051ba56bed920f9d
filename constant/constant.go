package constant

const (
	CTRL_LEFT_UP    = 0x00
	CTRL_LEFT_DOWN  = 0x01
	CTRL_RIGHT_UP   = 0x02
	CTRL_RIGHT_DOWN = 0x03
	NUM_CONTROLS    = 4
)

const (
	WINDOW_TITLE  = "aqpong"
	WINDOW_WIDTH  = 400
	WINDOW_HEIGHT = 400
	TARGET_FPS    = 50
	FRAME_DELAY   = 20 // ms
)

// Background and foreground colors in 0xRRGGBB.
const (
	COLOR_BACKGROUND = 0x444404
	COLOR_PADDLE     = 0xff0000
	COLOR_BALL       = 0xffffff
	COLOR_TEXT       = 0xcccccc
)

const (
	AUDIO_FREQ       = 44100
	AUDIO_SAMPLES    = 1024
	CHANNELS         = 2
	AUDIO_QUEUE_SIZE = 4
)

const (
	PADDLE_WIDTH         = 20
	PADDLE_HEIGHT        = 200
	PADDLE_STEP          = 5
	PADDLE_MIN_Y         = 0
	LEFT_PADDLE_X        = 5
	RIGHT_PADDLE_X       = 375
	PADDLE_START_Y       = 100
	BALL_START_X         = 200
	BALL_START_Y         = 200
	BALL_RADIUS          = 5
	BALL_START_VELOCITY  = 3
	TERMINAL_KEY_HOLD_MS = 150
)
