package dialogue

const (
	PromptModeSelect = "원하시는 모드를 선택해주세요"
	PromptStart      = "화면을 눌러 서비스를 시작해주세요"
	PromptWelcome    = "병원 안내 키오스크입니다. 원하시는 서비스를 선택하거나 음성으로 말씀해주세요."
	PromptMain       = "원하시는 서비스를 선택하거나 음성으로 말씀해주세요."
	PromptRouting    = "‘접수’, ‘접수 내역 확인’ 또는 ‘길찾기’ 중 하나를 말씀해주세요."

	PromptAskPhone   = "전화번호를 말씀해주세요."
	PromptAskAddress = "주소를 말씀해주세요."
	PromptAskSymptom = "불편하신 증상을 말씀해주세요."

	PromptRetryName    = "다시 성함을 말씀해주세요."
	PromptRetryPhone   = "다시 전화번호를 말씀해주세요."
	PromptRetryAddress = "다시 주소를 말씀해주세요."

	PromptReceptionDeclined = "접수를 원하지 않으시면 처음부터 다시 진행해 주세요."

	PromptUnclearConfirm = "잘 이해하지 못했습니다. 맞으면 '네', 아니면 '아니오'라고 말씀해주세요."
	PromptUnclearTriage  = "잘 이해하지 못했습니다. 접수 원하시면 '네'라고 말씀해주세요."

	PromptRepeat        = "죄송합니다. 다시 한 번 말씀해주세요."
	PromptRepeatOrTouch = "잘 들리지 않았습니다. 다시 말씀해주시거나 화면의 버튼을 눌러주세요."
	PromptStaffCall     = "죄송합니다. 직원을 호출하겠습니다. 잠시만 기다려주세요."
	PromptRetryExceeded = "입력 오류가 반복되었습니다. 직원을 호출하겠습니다."
	PromptStaffArriving = "직원이 곧 도착합니다"

	StatusStaffCalling = "직원 호출 중..."
)

// serviceRequest is the text sent to the backend when a service is chosen.
var serviceRequest = map[Service]string{
	ServiceReception: "접수",
	ServiceLookup:    "접수 내역 확인",
	ServiceDirection: "길찾기",
}

var stepLabels = map[Step]string{
	StepName:           "성함 입력",
	StepConfirmName:    "성함 확인",
	StepPhone:          "전화번호 입력",
	StepConfirmPhone:   "전화번호 확인",
	StepAddress:        "주소 입력",
	StepConfirmAddress: "주소 확인",
	StepSymptom:        "증상 입력",
	StepConfirmTriage:  "진료과 확인",
	StepFinish:         "접수 완료",
	StepLookupName:     "성함 입력",
	StepLookupPhone:    "전화번호 입력",
	StepShowResult:     "조회 결과",
	StepDirection:      "목적지 입력",
	StepShowDirection:  "길 안내",
}

var serviceLabels = map[Service]string{
	ServiceReception: "접수",
	ServiceLookup:    "접수 내역 확인",
	ServiceDirection: "길찾기",
}

// StepLabel is the caption shown in the kiosk header for a step.
func StepLabel(step Step) string {
	return stepLabels[step]
}

func ServiceLabel(service Service) string {
	return serviceLabels[service]
}

// StandingPrompt is what the kiosk says on a screen that takes no dialogue input.
func StandingPrompt(s Session) string {
	switch s.Screen {
	case ScreenModeSelect:
		return PromptModeSelect
	case ScreenStart:
		return PromptStart
	default:
		return PromptMain
	}
}
