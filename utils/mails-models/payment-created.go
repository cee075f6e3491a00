package mailsmodels

import (
	"fmt"
)

func PaymentCreated(conceptName, amount, checkoutURL string) []byte {
	subject := "Subject: Pago pendiente - CBTa 71 \r\n"
	mime := "MIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n"
	body := fmt.Sprintf(`
	<div style="background-color: #1B5E20; width: 100%%; min-height: 300px; padding: 30px; box-sizing:border-box">
		<table style="background-color: #ffffff; width: 100%%;  min-height: 300px;">
			<tbody>
				<tr>
					<td><h1 style="text-align:center">Pago registrado</h1></td>
				</tr>
				<tr>
					<td style="text-align:center; padding-bottom: 30px;">Se ha generado tu pago del concepto <strong>%s</strong> por un monto de <strong>$%s MXN</strong>.</td>
				</tr>
				<tr>
					<td style="text-align:center; padding-bottom: 30px;">
						<a href="%s" style="font-weight: bold; color: #1B5E20; text-align:center;">Completar el pago</a>
					</td>
				</tr>
			</tbody>
		</table>
	</div>
`, conceptName, amount, checkoutURL)

	return []byte(subject + mime + body)
}
