package services

import "fmt"

// User-facing texts. The restaurant operates in Portuguese.
const (
	MsgStoreClosed         = "Restaurante fechado no momento"
	MsgAlreadyInCart       = "Item já está no carrinho"
	MsgNotOrderable        = "Apenas as opções do dia podem ser pedidas"
	MsgItemAdded           = "Item adicionado ao carrinho"
	MsgItemRemoved         = "Item removido do carrinho"
	MsgInvalidName         = "Por favor, insira um nome válido (apenas letras)"
	MsgInvalidRegistration = "Por favor, insira uma matrícula válida (4 dígitos)"
	MsgInvalidObservations = "Por favor, insira observações válidas (apenas texto e pontuação básica)"
	MsgEmptyCart           = "Adicione itens ao carrinho"
	MsgOrderPlaced         = "Pedido realizado com sucesso!"
	MsgOrderFailed         = "Erro ao realizar pedido"
	MsgItemUnavailable     = "Item indisponível"
	MsgDishNotFound        = "Prato não encontrado"

	MsgLoginFailed        = "Erro ao fazer login. Verifique suas credenciais."
	MsgSessionRequired    = "Sessão expirada. Faça login novamente."
	MsgResetEmailRequired = "Digite seu email antes de solicitar a recuperação de senha"
	MsgResetSent          = "Email de recuperação enviado com sucesso!"
	MsgResetFailed        = "Erro ao enviar email de recuperação."
	MsgResetInvalid       = "Link de recuperação inválido ou expirado"
	MsgPasswordChanged    = "Senha alterada com sucesso"
	MsgWeakPassword       = "A senha deve ter pelo menos 8 caracteres"

	MsgHoursUpdated     = "Horário atualizado com sucesso"
	MsgHoursFailed      = "Erro ao atualizar horário"
	MsgDishAdded        = "Prato adicionado com sucesso"
	MsgDishAddFailed    = "Erro ao adicionar prato"
	MsgDishDeleted      = "Prato excluído com sucesso"
	MsgDishDeleteFailed = "Erro ao excluir prato"
	MsgOrderDeleted     = "Pedido excluído com sucesso"
	MsgOrderDeleteFail  = "Erro ao excluir pedido"
	MsgInternalError    = "Erro interno"
)

// DayNames indexes weekday names by time.Weekday (0 = Sunday).
var DayNames = [7]string{
	"Domingo",
	"Segunda-feira",
	"Terça-feira",
	"Quarta-feira",
	"Quinta-feira",
	"Sexta-feira",
	"Sábado",
}

func LoginThrottledMessage(waitSeconds int) string {
	return fmt.Sprintf("Muitas tentativas. Tente novamente em %d segundos.", waitSeconds)
}
