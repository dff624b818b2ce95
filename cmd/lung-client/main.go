package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const defaultServerURL = "http://localhost:3536"

// Order matches the server's probability vector.
var classNames = []string{
	"Adenocarcinoma",
	"Large cell carcinoma",
	"Normal",
	"Squamous cell carcinoma",
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	inputStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	rowStyle    = lipgloss.NewStyle().PaddingLeft(2)
	bestStyle   = rowStyle.Bold(true).Foreground(lipgloss.Color("214"))
)

type step int

const (
	stepEnteringEmail step = iota
	stepEnteringLoginPassword
	stepLoggingIn
	stepEnteringPatientName
	stepEnteringPatientAge
	stepEnteringPatientGender
	stepEnteringPatientAddress
	stepEnteringImagePath
	stepUploading
	stepComplete
)

type patientForm struct {
	name    string
	age     string
	gender  string
	address string
}

type predictionResponse struct {
	Message       string    `json:"message"`
	Prediction    string    `json:"prediction"`
	Probabilities []float32 `json:"probabilities"`
	RecordID      string    `json:"record_id"`
	ImagePath     string    `json:"image_path"`
	Error         string    `json:"error"`
}

type model struct {
	step         step
	serverURL    string
	email        string
	loginPass    string
	userID       string
	authToken    string
	patient      patientForm
	imagePath    string
	currentInput string
	message      string
	result       *predictionResponse
	quitting     bool
}

type loginSuccessMsg struct {
	userID string
	token  string
}
type predictionMsg struct{ result *predictionResponse }
type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

func initialModel(serverURL string) model {
	return model{
		step:      stepEnteringEmail,
		serverURL: strings.TrimRight(serverURL, "/"),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func loginUser(serverURL, email, password string) tea.Cmd {
	return func() tea.Msg {
		userID, token, err := login(&http.Client{Timeout: 10 * time.Second}, serverURL, email, password)
		if err != nil {
			return errMsg{err}
		}
		return loginSuccessMsg{userID: userID, token: token}
	}
}

func login(client *http.Client, serverURL, email, password string) (string, string, error) {
	payload := map[string]string{
		"email":    email,
		"password": password,
	}
	jsonData, _ := json.Marshal(payload)

	req, err := http.NewRequest(http.MethodPost, serverURL+"/login", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("server not reachable: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		UserID string `json:"user_id"`
		Token  string `json:"token"`
		Error  string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", "", fmt.Errorf("unexpected login response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("login failed: %s", result.Error)
	}
	if result.UserID == "" {
		return "", "", fmt.Errorf("login response has no user_id")
	}
	return result.UserID, result.Token, nil
}

func uploadScan(serverURL, token, userID string, patient patientForm, imagePath string) tea.Cmd {
	return func() tea.Msg {
		result, err := predict(&http.Client{Timeout: 60 * time.Second}, serverURL, token, userID, patient, imagePath)
		if err != nil {
			return errMsg{err}
		}
		return predictionMsg{result: result}
	}
}

func predict(client *http.Client, serverURL, token, userID string, patient patientForm, imagePath string) (*predictionResponse, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fields := map[string]string{
		"user_id":         userID,
		"patient_name":    patient.name,
		"patient_age":     patient.age,
		"patient_gender":  patient.gender,
		"patient_address": patient.address,
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	part, err := w.CreateFormFile("patient_ct_image", filepath.Base(imagePath))
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, serverURL+"/lungpredict", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to upload: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var result predictionResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(raw))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, result.Error)
	}
	return &result, nil
}

func (m model) textStep() bool {
	switch m.step {
	case stepEnteringEmail, stepEnteringLoginPassword, stepEnteringPatientName,
		stepEnteringPatientAge, stepEnteringPatientGender, stepEnteringPatientAddress,
		stepEnteringImagePath:
		return true
	}
	return false
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "backspace":
			if len(m.currentInput) > 0 {
				m.currentInput = m.currentInput[:len(m.currentInput)-1]
			}

		case "enter":
			return m.submit()

		default:
			if m.textStep() && msg.Type == tea.KeySpace {
				m.currentInput += " "
			} else if m.textStep() && msg.Type == tea.KeyRunes {
				m.currentInput += string(msg.Runes)
			} else if msg.String() == "q" && !m.textStep() {
				m.quitting = true
				return m, tea.Quit
			}
		}

	case loginSuccessMsg:
		m.userID = msg.userID
		m.authToken = msg.token
		m.step = stepEnteringPatientName
		m.message = okStyle.Render("✓ Logged in as " + m.email)

	case predictionMsg:
		m.result = msg.result
		m.step = stepComplete
		m.message = okStyle.Render("✓ " + msg.result.Message)

	case errMsg:
		m.message = failStyle.Render("✗ " + msg.err.Error())
		if m.step == stepLoggingIn {
			m.step = stepEnteringEmail
		} else {
			m.step = stepEnteringImagePath
		}
	}

	return m, nil
}

func (m model) submit() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.currentInput)

	switch m.step {
	case stepEnteringEmail:
		if input != "" {
			m.email = input
			m.currentInput = ""
			m.step = stepEnteringLoginPassword
		}

	case stepEnteringLoginPassword:
		if m.currentInput != "" {
			m.loginPass = m.currentInput
			m.currentInput = ""
			m.step = stepLoggingIn
			m.message = "Logging in..."
			return m, loginUser(m.serverURL, m.email, m.loginPass)
		}

	// patient fields are optional
	case stepEnteringPatientName:
		m.patient.name = input
		m.currentInput = ""
		m.step = stepEnteringPatientAge

	case stepEnteringPatientAge:
		m.patient.age = input
		m.currentInput = ""
		m.step = stepEnteringPatientGender

	case stepEnteringPatientGender:
		m.patient.gender = input
		m.currentInput = ""
		m.step = stepEnteringPatientAddress

	case stepEnteringPatientAddress:
		m.patient.address = input
		m.currentInput = ""
		m.step = stepEnteringImagePath

	case stepEnteringImagePath:
		if input != "" {
			m.imagePath = input
			m.currentInput = ""
			m.step = stepUploading
			m.message = "Uploading scan..."
			return m, uploadScan(m.serverURL, m.authToken, m.userID, m.patient, m.imagePath)
		}

	case stepComplete:
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

func (m model) prompt(label string, masked bool) string {
	shown := m.currentInput
	if masked {
		shown = strings.Repeat("•", len(m.currentInput))
	}
	return promptStyle.Render(label+"\n") + inputStyle.Render("> "+shown) + "\n\nPress Enter\n"
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder

	s.WriteString(headerStyle.Render("Lung CT Prediction") + "\n\n")
	if m.message != "" && m.step != stepLoggingIn && m.step != stepUploading {
		s.WriteString(m.message + "\n\n")
	}

	switch m.step {
	case stepEnteringEmail:
		s.WriteString(m.prompt("Enter your email:", false))

	case stepEnteringLoginPassword:
		s.WriteString(m.prompt("Enter your password:", true))

	case stepLoggingIn, stepUploading:
		s.WriteString(m.message + "\n")

	case stepEnteringPatientName:
		s.WriteString(m.prompt("Patient name (optional):", false))

	case stepEnteringPatientAge:
		s.WriteString(m.prompt("Patient age (optional):", false))

	case stepEnteringPatientGender:
		s.WriteString(m.prompt("Patient gender (optional):", false))

	case stepEnteringPatientAddress:
		s.WriteString(m.prompt("Patient address (optional):", false))

	case stepEnteringImagePath:
		s.WriteString(m.prompt("Path to CT image:", false))

	case stepComplete:
		s.WriteString(formatResult(m.result))
		s.WriteString("\nPress Enter to exit\n")
	}

	return s.String()
}

func formatResult(r *predictionResponse) string {
	if r == nil {
		return ""
	}
	best := 0
	for i, p := range r.Probabilities {
		if p > r.Probabilities[best] {
			best = i
		}
	}

	var s strings.Builder
	s.WriteString(bestStyle.Render("Prediction: "+r.Prediction) + "\n\n")
	for i, p := range r.Probabilities {
		name := fmt.Sprintf("class %d", i)
		if i < len(classNames) {
			name = classNames[i]
		}
		style := rowStyle
		if i == best {
			style = bestStyle
		}
		s.WriteString(style.Render(fmt.Sprintf("%-24s %6.2f%%", name, p*100)) + "\n")
	}
	if r.ImagePath != "" {
		s.WriteString("\n" + rowStyle.Render("Annotated image: "+r.ImagePath) + "\n")
	}
	s.WriteString(rowStyle.Render("Record: "+r.RecordID) + "\n")
	return s.String()
}

func main() {
	serverURL := os.Getenv("LUNG_SERVER_URL")
	if serverURL == "" {
		serverURL = defaultServerURL
	}

	p := tea.NewProgram(initialModel(serverURL))
	if _, err := p.Run(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
